package factory

import (
	"context"
	"fmt"

	"github.com/mikey/lovescan/internal/adapters/vision"
	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/domainlist"
	"github.com/mikey/lovescan/internal/ports"
	"go.uber.org/zap"
)

// ScanFactory creates the scan service and its analyzers
type ScanFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewScanFactory creates a new scan factory
func NewScanFactory(cfg *config.Config, logger *zap.Logger) *ScanFactory {
	return &ScanFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateImageAnalyzer builds the image analyzer with any configured extra domain tokens
func (f *ScanFactory) CreateImageAnalyzer() (*core.ImageMatchAnalyzer, error) {
	scanCfg, err := f.cfg.GetScan()
	if err != nil {
		return nil, fmt.Errorf("invalid scan configuration: %w", err)
	}

	logger := f.logger.Named("domains")
	return core.NewImageMatchAnalyzer(
		domainlist.New("scam", domainlist.DefaultScamTokens, scanCfg.ExtraScamTokens, logger),
		domainlist.New("stock", domainlist.DefaultStockTokens, scanCfg.ExtraStockTokens, logger),
		domainlist.New("social", domainlist.DefaultSocialTokens, scanCfg.ExtraSocialTokens, logger),
	), nil
}

// CreateImageSearcher creates the Vision reverse image search client, or nil when disabled
func (f *ScanFactory) CreateImageSearcher() (ports.ImageSearcher, error) {
	visionCfg := f.cfg.GetVision()
	if !visionCfg.Enabled {
		return nil, nil
	}
	if visionCfg.APIKey == "" {
		return nil, fmt.Errorf("vision.api_key is required when vision is enabled")
	}
	return vision.NewClient(context.Background(), visionCfg.APIKey, visionCfg.MaxResults, f.logger.Named("vision"))
}

// CreateScanService wires the scan service. Every collaborator may be nil.
func (f *ScanFactory) CreateScanService(
	llmClient core.LLMClient,
	cacheRepo core.CacheRepository,
	publisher core.ReportPublisher,
	observer core.ScanObserver,
) (*core.ScanService, error) {
	scanCfg, err := f.cfg.GetScan()
	if err != nil {
		return nil, fmt.Errorf("invalid scan configuration: %w", err)
	}
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, fmt.Errorf("invalid cache configuration: %w", err)
	}

	images, err := f.CreateImageAnalyzer()
	if err != nil {
		return nil, err
	}

	return core.NewScanService(llmClient, cacheRepo, publisher, observer, images, f.logger.Named("scan"), core.ServiceConfig{
		AnalyzerTimeout: scanCfg.AnalyzerTimeout,
		CacheEnabled:    cacheCfg.Enabled,
		CacheTTL:        cacheCfg.TTL,
	}), nil
}
