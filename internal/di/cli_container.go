package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/factory"
	"github.com/mikey/lovescan/internal/logging"
	"github.com/mikey/lovescan/internal/ports"
	"github.com/mikey/lovescan/internal/utils"
)

// CLIOptions carries the command line settings that shape the CLI container
type CLIOptions struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool

	// Provider enables LLM chat analysis with the named provider when set
	Provider string
	APIKey   string
	Model    string
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application.
// The CLI never caches verdicts, publishes reports or exports metrics.
func BuildCLIContainer(opts *CLIOptions) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(func() *CLIOptions { return opts }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(opts *CLIOptions) (*zap.Logger, error) {
		return logging.InitConsoleLogger(opts.Verbose, opts.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(opts *CLIOptions, logger *zap.Logger) (*config.Config, error) {
		if opts.ConfigFile != "" {
			cfg, err := config.NewFromFile(opts.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			applyCLIOverrides(cfg, opts)
			return cfg, nil
		}
		cfg := config.NewFromViper(config.NewEmptyViper())
		applyCLIOverrides(cfg, opts)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	for _, c := range []interface{}{
		factory.NewTextProcessorFactory,
		factory.NewLLMFactory,
		factory.NewScanFactory,
	} {
		if err := container.Provide(c); err != nil {
			return nil, err
		}
	}

	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(f *factory.ScanFactory) (ports.ImageSearcher, error) {
		return f.CreateImageSearcher()
	}); err != nil {
		return nil, err
	}

	// Register scan service with no cache, publisher or observer
	if err := container.Provide(func(f *factory.ScanFactory, llmClient core.LLMClient) (*core.ScanService, error) {
		return f.CreateScanService(llmClient, nil, nil, nil)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// applyCLIOverrides layers explicit command line settings over the configuration
func applyCLIOverrides(cfg *config.Config, opts *CLIOptions) {
	v := cfg.GetViper()
	v.Set("cache.enabled", false)
	v.Set("report.publisher", "none")

	if opts.Provider == "" {
		return
	}
	v.Set("llm.enabled", true)
	v.Set("llm.provider", opts.Provider)

	switch opts.Provider {
	case "openai", "gemini":
		if opts.APIKey != "" {
			v.Set(opts.Provider+".api_key", opts.APIKey)
		}
		if opts.Model != "" {
			v.Set(opts.Provider+".model_name", opts.Model)
		}
	case "bedrock":
		if opts.Model != "" {
			v.Set("bedrock.model_id", opts.Model)
		}
	}
}
