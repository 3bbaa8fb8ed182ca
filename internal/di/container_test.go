package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/ports"
)

func TestBuildCLIContainer_Defaults(t *testing.T) {
	container, err := BuildCLIContainer(&CLIOptions{})
	require.NoError(t, err)

	err = container.Invoke(func(service *core.ScanService, llmClient core.LLMClient, images ports.ImageSearcher) {
		assert.Nil(t, llmClient)
		assert.Nil(t, images)

		report, err := service.Scan(context.Background(), []core.EvidenceItem{
			core.ChatText{Text: "I need money urgently, my dad is in hospital"},
		})
		require.NoError(t, err)
		assert.Equal(t, 75, report.RiskScore)
		assert.Equal(t, core.LevelHigh, report.RiskLevel)
	})
	require.NoError(t, err)
}

func TestBuildCLIContainer_ProviderRequiresKey(t *testing.T) {
	container, err := BuildCLIContainer(&CLIOptions{Provider: "openai"})
	require.NoError(t, err)

	err = container.Invoke(func(core.LLMClient) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai.api_key is required")
}

func TestApplyCLIOverrides(t *testing.T) {
	cfg := config.NewFromViper(config.NewEmptyViper())
	applyCLIOverrides(cfg, &CLIOptions{Provider: "gemini", APIKey: "k", Model: "gemini-pro"})

	assert.True(t, cfg.GetBool("llm.enabled"))
	assert.Equal(t, "gemini", cfg.GetString("llm.provider"))
	assert.Equal(t, "k", cfg.GetString("gemini.api_key"))
	assert.Equal(t, "gemini-pro", cfg.GetString("gemini.model_name"))
	assert.False(t, cfg.GetBool("cache.enabled"))
	assert.Equal(t, "none", cfg.GetString("report.publisher"))
}
