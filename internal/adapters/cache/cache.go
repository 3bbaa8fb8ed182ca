package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/lovescan/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a cache entry is not found
	ErrNotFound = errors.New("cache entry not found")
	// ErrExpired is returned when a cache entry has expired
	ErrExpired = errors.New("cache entry expired")
)

// storedEntry is the serialized form of a cache entry
type storedEntry struct {
	Finding   core.RiskFinding `json:"finding"`
	LastSeen  time.Time        `json:"last_seen"`
	ExpiresAt time.Time        `json:"expires_at"`
}

func encodeFinding(f core.RiskFinding) (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("failed to encode finding: %w", err)
	}
	return string(data), nil
}

func decodeFinding(data string) (core.RiskFinding, error) {
	var f core.RiskFinding
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return core.RiskFinding{}, fmt.Errorf("failed to decode finding: %w", err)
	}
	return f, nil
}

// runCleanup calls cleanup every freq until stopCh is closed
func runCleanup(freq time.Duration, stopCh <-chan struct{}, cleanup func(context.Context) error, logger *zap.Logger) {
	if freq <= 0 {
		return
	}

	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := cleanup(context.Background()); err != nil {
				logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-stopCh:
			return
		}
	}
}
