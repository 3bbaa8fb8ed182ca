package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/lovescan/internal/adapters/cache"
	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates cache repositories based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheRepository creates a cache repository based on the configuration.
// It returns nil when caching is disabled.
func (f *CacheFactory) CreateCacheRepository() (core.CacheRepository, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, fmt.Errorf("invalid cache configuration: %w", err)
	}

	if !cacheCfg.Enabled {
		return nil, nil
	}

	logger := f.logger.Named("cache")

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(logger, cacheCfg.CleanupFrequency), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheCfg.SQLitePath, logger, cacheCfg.CleanupFrequency)
	case "mysql":
		return cache.NewMySQLCache(cacheCfg.MySQLDSN, logger, cacheCfg.CleanupFrequency)
	case "redis":
		return cache.NewRedisCache(context.Background(),
			cacheCfg.Redis.Address,
			cacheCfg.Redis.Password,
			cacheCfg.Redis.DB,
			cacheCfg.Redis.KeyPrefix,
			logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}
