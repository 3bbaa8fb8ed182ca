package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = sqlDialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS lovescan_verdicts (
			cache_key TEXT PRIMARY KEY,
			finding TEXT NOT NULL,
			last_seen INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lovescan_verdicts_expires_at ON lovescan_verdicts(expires_at)`,
	},
	upsert: `
		INSERT OR REPLACE INTO lovescan_verdicts (cache_key, finding, last_seen, expires_at)
		VALUES (?, ?, ?, ?)
	`,
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return newSQLCache(db, sqliteDialect, logger, cleanupFreq)
}
