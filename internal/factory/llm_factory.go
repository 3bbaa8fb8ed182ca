package factory

import (
	"fmt"

	"github.com/mikey/lovescan/internal/adapters/bedrock"
	"github.com/mikey/lovescan/internal/adapters/gemini"
	"github.com/mikey/lovescan/internal/adapters/llm"
	"github.com/mikey/lovescan/internal/adapters/openai"
	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/utils"
	"go.uber.org/zap"
)

// llmClientFactory is implemented by every provider adapter factory
type llmClientFactory interface {
	CreateLLMClient() (core.LLMClient, error)
}

// LLMFactory creates LLM clients
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateLLMClient creates the configured LLM client. It returns nil when LLM
// chat analysis is disabled, leaving the phrase catalog as the only verdict.
func (f *LLMFactory) CreateLLMClient() (core.LLMClient, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return nil, err
	}

	if !llmConfig.Enabled {
		f.logger.Info("LLM chat analysis disabled, using phrase catalog only")
		return nil, nil
	}

	var provider llmClientFactory
	switch llmConfig.Provider {
	case "bedrock":
		provider = bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
	case "gemini":
		provider = gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
	case "openai":
		provider = openai.NewFactory(f.cfg, f.logger, f.textProcessor)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}

	client, err := provider.CreateLLMClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", llmConfig.Provider, err)
	}

	f.logger.Info("LLM chat analysis enabled",
		zap.String("provider", llmConfig.Provider),
		zap.String("model", client.ModelName()),
		zap.Duration("timeout", llmConfig.Timeout))

	return llm.WithTimeout(client, llmConfig.Timeout), nil
}
