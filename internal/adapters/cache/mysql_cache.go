package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = sqlDialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS lovescan_verdicts (
			cache_key CHAR(64) PRIMARY KEY,
			finding TEXT NOT NULL,
			last_seen BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_expires_at (expires_at)
		)`,
	},
	upsert: `
		INSERT INTO lovescan_verdicts (cache_key, finding, last_seen, expires_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			finding = VALUES(finding),
			last_seen = VALUES(last_seen),
			expires_at = VALUES(expires_at)
	`,
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	return newSQLCache(db, mysqlDialect, logger, cleanupFreq)
}
