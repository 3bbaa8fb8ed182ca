package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/lovescan/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a Redis implementation of the CacheRepository interface.
// Expiry is delegated to Redis key TTLs.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
	now       func() time.Time
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, address, password string, db int, keyPrefix string, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("address", address), zap.Int("db", db))

	return NewRedisCacheWithClient(client, keyPrefix, logger), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
		now:       time.Now,
	}
}

func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

// Get retrieves a cached entry by key
func (c *RedisCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	data, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read Redis cache: %w", err)
	}

	var stored storedEntry
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode Redis cache entry: %w", err)
	}

	if c.now().After(stored.ExpiresAt) {
		return nil, ErrExpired
	}

	return &core.CacheEntry{
		Key:       key,
		Finding:   stored.Finding,
		LastSeen:  stored.LastSeen,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Set stores a cache entry with a TTL matching its expiry
func (c *RedisCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	ttl := entry.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(storedEntry{
		Finding:   entry.Finding,
		LastSeen:  entry.LastSeen,
		ExpiresAt: entry.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode Redis cache entry: %w", err)
	}

	if err := c.client.Set(ctx, c.key(entry.Key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write Redis cache: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete Redis cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op, Redis expires keys on its own
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
	}
}
