package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupSQLiteCache(t *testing.T) *SQLCache {
	t.Helper()

	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "verdicts.db"), zap.NewNop(), 0)
	require.NoError(t, err)
	t.Cleanup(c.Stop)

	return c
}

func TestSQLiteCache_SetGet(t *testing.T) {
	c := setupSQLiteCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now().Truncate(time.Second)
	entry := testEntry("k1", now, time.Hour)
	require.NoError(t, c.Set(ctx, entry))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, entry.Finding, got.Finding)
	assert.True(t, entry.ExpiresAt.Equal(got.ExpiresAt))

	entry.Finding.Score = 90
	require.NoError(t, c.Set(ctx, entry))
	got, err = c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 90, got.Finding.Score)

	require.NoError(t, c.Delete(ctx, "k1"))
	_, err = c.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteCache_Expiry(t *testing.T) {
	c := setupSQLiteCache(t)
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, testEntry("old", now.Add(-2*time.Hour), time.Hour)))

	_, err := c.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrExpired)

	require.NoError(t, c.Cleanup(ctx))
	_, err = c.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}
