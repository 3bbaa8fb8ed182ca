package config

import (
	"time"
)

// LLMConfig represents the configuration for the optional LLM chat analysis
type LLMConfig struct {
	Enabled  bool
	Provider string
	Timeout  time.Duration
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxChatSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxChatSize int
}

// OpenAIConfig represents the configuration for OpenAI-compatible APIs
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxChatSize int
}

// VisionConfig represents the Cloud Vision reverse image search
type VisionConfig struct {
	Enabled    bool
	APIKey     string
	MaxResults int
}

// RedisConfig represents the Redis cache connection
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// CacheConfig represents the LLM verdict cache configuration
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	Redis            RedisConfig
}

// HTTPConfig represents the HTTP API frontend
type HTTPConfig struct {
	ListenAddress  string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// SMTPHeaders names the headers added to relayed mail
type SMTPHeaders struct {
	Level    string
	Score    string
	Concerns string
	Verdict  string
}

// SMTPConfig represents the forwarded-chat mail intake
type SMTPConfig struct {
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
	RelayEnabled    bool
	RelayHost       string
	RelayPort       int
	Headers         SMTPHeaders
}

// ServerConfig represents the enabled frontends
type ServerConfig struct {
	Frontends []string
	HTTP      HTTPConfig
	SMTP      SMTPConfig
}

// ScanConfig represents the scan service configuration
type ScanConfig struct {
	AnalyzerTimeout   time.Duration
	ExtraScamTokens   []string
	ExtraStockTokens  []string
	ExtraSocialTokens []string
}

// NATSConfig represents the NATS report publisher
type NATSConfig struct {
	URL           string
	Subject       string
	MaxReconnects int
	ReconnectWait time.Duration
}

// ReportConfig represents where finished reports are delivered
type ReportConfig struct {
	Publisher string
	NATS      NATSConfig
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() (LLMConfig, error) {
	timeout, err := c.GetDuration("llm.timeout")
	if err != nil {
		return LLMConfig{}, err
	}
	return LLMConfig{
		Enabled:  c.GetBool("llm.enabled"),
		Provider: c.GetString("llm.provider"),
		Timeout:  timeout,
	}, nil
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxChatSize: c.GetInt("bedrock.max_chat_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxChatSize: c.GetInt("gemini.max_chat_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxChatSize: c.GetInt("openai.max_chat_size"),
	}
}

// GetVision returns the Vision configuration
func (c *Config) GetVision() VisionConfig {
	return VisionConfig{
		Enabled:    c.GetBool("vision.enabled"),
		APIKey:     c.GetString("vision.api_key"),
		MaxResults: c.GetInt("vision.max_results"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		Redis: RedisConfig{
			Address:   c.GetString("cache.redis.address"),
			Password:  c.GetString("cache.redis.password"),
			DB:        c.GetInt("cache.redis.db"),
			KeyPrefix: c.GetString("cache.redis.key_prefix"),
		},
	}, nil
}

// GetServer returns the frontend configuration
func (c *Config) GetServer() (ServerConfig, error) {
	timeout, err := c.GetDuration("server.http.request_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		Frontends: c.GetStringSlice("server.frontends"),
		HTTP: HTTPConfig{
			ListenAddress:  c.GetString("server.http.listen_address"),
			RequestTimeout: timeout,
			MaxBodyBytes:   int64(c.GetInt("server.http.max_body_bytes")),
			AllowedOrigins: c.GetStringSlice("server.http.cors_allowed_origins"),
		},
		SMTP: SMTPConfig{
			ListenAddress:   c.GetString("server.smtp.listen_address"),
			Domain:          c.GetString("server.smtp.domain"),
			MaxMessageBytes: int64(c.GetInt("server.smtp.max_message_bytes")),
			RelayEnabled:    c.GetBool("server.smtp.relay_enabled"),
			RelayHost:       c.GetString("server.smtp.relay_host"),
			RelayPort:       c.GetInt("server.smtp.relay_port"),
			Headers: SMTPHeaders{
				Level:    c.GetString("server.smtp.headers.level"),
				Score:    c.GetString("server.smtp.headers.score"),
				Concerns: c.GetString("server.smtp.headers.concerns"),
				Verdict:  c.GetString("server.smtp.headers.verdict"),
			},
		},
	}, nil
}

// GetScan returns the scan service configuration
func (c *Config) GetScan() (ScanConfig, error) {
	timeout, err := c.GetDuration("scan.analyzer_timeout")
	if err != nil {
		return ScanConfig{}, err
	}
	return ScanConfig{
		AnalyzerTimeout:   timeout,
		ExtraScamTokens:   c.GetStringSlice("scan.image.extra_scam_tokens"),
		ExtraStockTokens:  c.GetStringSlice("scan.image.extra_stock_tokens"),
		ExtraSocialTokens: c.GetStringSlice("scan.image.extra_social_tokens"),
	}, nil
}

// GetReport returns the report delivery configuration
func (c *Config) GetReport() (ReportConfig, error) {
	wait, err := c.GetDuration("report.nats.reconnect_wait")
	if err != nil {
		return ReportConfig{}, err
	}
	return ReportConfig{
		Publisher: c.GetString("report.publisher"),
		NATS: NATSConfig{
			URL:           c.GetString("report.nats.url"),
			Subject:       c.GetString("report.nats.subject"),
			MaxReconnects: c.GetInt("report.nats.max_reconnects"),
			ReconnectWait: wait,
		},
	}, nil
}
