package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/lovescan/")
	v.AddConfigPath("$HOME/.lovescan")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("LOVESCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration instance from an explicit config file
func NewFromFile(path string) (*Config, error) {
	v := NewEmptyViper()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvPrefix("LOVESCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM chat analysis is optional; the heuristic classifier always runs
	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.timeout", "15s")

	v.SetDefault("server.frontends", []string{"http"})
	v.SetDefault("server.http.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.http.request_timeout", "30s")
	v.SetDefault("server.http.max_body_bytes", 1<<20)
	v.SetDefault("server.http.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.smtp.listen_address", "0.0.0.0:10026")
	v.SetDefault("server.smtp.domain", "lovescan.local")
	v.SetDefault("server.smtp.max_message_bytes", 1<<20)
	v.SetDefault("server.smtp.relay_enabled", true)
	v.SetDefault("server.smtp.relay_host", "localhost")
	v.SetDefault("server.smtp.relay_port", 10027)
	v.SetDefault("server.smtp.headers.level", "X-LoveScan-Risk-Level")
	v.SetDefault("server.smtp.headers.score", "X-LoveScan-Risk-Score")
	v.SetDefault("server.smtp.headers.concerns", "X-LoveScan-Concerns")
	v.SetDefault("server.smtp.headers.verdict", "X-LoveScan-Verdict")

	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_chat_size", 8192)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_chat_size", 8192)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_chat_size", 8192)

	v.SetDefault("scan.analyzer_timeout", "20s")
	v.SetDefault("scan.image.extra_scam_tokens", []string{})
	v.SetDefault("scan.image.extra_stock_tokens", []string{})
	v.SetDefault("scan.image.extra_social_tokens", []string{})

	v.SetDefault("vision.enabled", false)
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.max_results", 20)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/lovescan_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/lovescan?parseTime=true")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.key_prefix", "lovescan:verdict:")

	v.SetDefault("report.publisher", "log")
	v.SetDefault("report.nats.url", "nats://localhost:4222")
	v.SetDefault("report.nats.subject", "lovescan.reports")
	v.SetDefault("report.nats.max_reconnects", 10)
	v.SetDefault("report.nats.reconnect_wait", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration parses a duration value such as "15s" from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
