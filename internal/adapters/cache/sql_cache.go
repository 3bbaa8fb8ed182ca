package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/lovescan/internal/core"
	"go.uber.org/zap"
)

// sqlDialect holds the statements that differ between database engines
type sqlDialect struct {
	name   string
	schema []string
	upsert string
}

// SQLCache is a database/sql implementation of the CacheRepository interface.
// Timestamps are stored as unix seconds so expiry checks do not depend on the
// database clock.
type SQLCache struct {
	db          *sql.DB
	dialect     sqlDialect
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

func newSQLCache(db *sql.DB, dialect sqlDialect, logger *zap.Logger, cleanupFreq time.Duration) (*SQLCache, error) {
	for _, stmt := range dialect.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create %s schema: %w", dialect.name, err)
		}
	}

	cache := &SQLCache{
		db:          db,
		dialect:     dialect,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	go runCleanup(cleanupFreq, cache.stopCh, cache.Cleanup, logger)

	return cache, nil
}

// Get retrieves a cached entry by key
func (c *SQLCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var finding string
	var lastSeen, expiresAt int64

	err := c.db.QueryRowContext(ctx, `
		SELECT finding, last_seen, expires_at
		FROM lovescan_verdicts
		WHERE cache_key = ?
	`, key).Scan(&finding, &lastSeen, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query %s cache: %w", c.dialect.name, err)
	}

	if c.now().Unix() > expiresAt {
		return nil, ErrExpired
	}

	f, err := decodeFinding(finding)
	if err != nil {
		return nil, err
	}

	return &core.CacheEntry{
		Key:       key,
		Finding:   f,
		LastSeen:  time.Unix(lastSeen, 0).UTC(),
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
	}, nil
}

// Set stores a cache entry
func (c *SQLCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	finding, err := encodeFinding(entry.Finding)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, c.dialect.upsert,
		entry.Key, finding, entry.LastSeen.Unix(), entry.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert %s cache entry: %w", c.dialect.name, err)
	}

	return nil
}

// Delete removes a cache entry
func (c *SQLCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM lovescan_verdicts WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *SQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM lovescan_verdicts WHERE expires_at < ?`, c.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *SQLCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.String("dialect", c.dialect.name), zap.Error(err))
		}
	})
}
