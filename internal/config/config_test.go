package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	llm, err := cfg.GetLLM()
	require.NoError(t, err)
	assert.False(t, llm.Enabled)
	assert.Equal(t, 15*time.Second, llm.Timeout)

	scan, err := cfg.GetScan()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, scan.AnalyzerTimeout)
	assert.Empty(t, scan.ExtraScamTokens)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.True(t, cache.Enabled)
	assert.Equal(t, "memory", cache.Type)
	assert.Equal(t, 24*time.Hour, cache.TTL)
	assert.Equal(t, "lovescan:verdict:", cache.Redis.KeyPrefix)

	server, err := cfg.GetServer()
	require.NoError(t, err)
	assert.Equal(t, []string{"http"}, server.Frontends)
	assert.Equal(t, "X-LoveScan-Risk-Level", server.SMTP.Headers.Level)

	report, err := cfg.GetReport()
	require.NoError(t, err)
	assert.Equal(t, "log", report.Publisher)
	assert.Equal(t, 2*time.Second, report.NATS.ReconnectWait)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  enabled: true
  provider: gemini
scan:
  analyzer_timeout: 5s
  image:
    extra_scam_tokens: [badactors, romancewatch]
cache:
  type: redis
  redis:
    address: redis:6379
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	llm, err := cfg.GetLLM()
	require.NoError(t, err)
	assert.True(t, llm.Enabled)
	assert.Equal(t, "gemini", llm.Provider)

	scan, err := cfg.GetScan()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, scan.AnalyzerTimeout)
	assert.Equal(t, []string{"badactors", "romancewatch"}, scan.ExtraScamTokens)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "redis", cache.Type)
	assert.Equal(t, "redis:6379", cache.Redis.Address)
	assert.Equal(t, 24*time.Hour, cache.TTL)
}

func TestGetDuration_Invalid(t *testing.T) {
	v := NewEmptyViper()
	v.Set("scan.analyzer_timeout", "soon")
	cfg := NewFromViper(v)

	_, err := cfg.GetScan()
	assert.ErrorContains(t, err, "scan.analyzer_timeout")
}

func TestNewFromFile_Missing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
