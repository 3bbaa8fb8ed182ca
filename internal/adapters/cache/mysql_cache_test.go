package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var verdictColumns = []string{"finding", "last_seen", "expires_at"}

func setupMySQLCache(t *testing.T, now time.Time) (*SQLCache, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lovescan_verdicts").
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, err := newSQLCache(db, mysqlDialect, zap.NewNop(), 0)
	require.NoError(t, err)
	c.now = func() time.Time { return now }

	return c, mock
}

func TestMySQLCache_SetGet(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c, mock := setupMySQLCache(t, now)
	ctx := context.Background()
	entry := testEntry("k1", now, time.Hour)

	mock.ExpectExec("ON DUPLICATE KEY UPDATE").
		WithArgs("k1", sqlmock.AnyArg(), now.Unix(), now.Add(time.Hour).Unix()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, c.Set(ctx, entry))

	finding, err := encodeFinding(entry.Finding)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT finding, last_seen, expires_at").
		WithArgs("k1").
		WillReturnRows(sqlmock.NewRows(verdictColumns).AddRow(finding, now.Unix(), now.Add(time.Hour).Unix()))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, entry.Finding, got.Finding)
	assert.Equal(t, now.Add(time.Hour).Unix(), got.ExpiresAt.Unix())

	mock.ExpectClose()
	c.Stop()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCache_GetMissingAndExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c, mock := setupMySQLCache(t, now)
	ctx := context.Background()

	mock.ExpectQuery("SELECT finding, last_seen, expires_at").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(verdictColumns))
	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery("SELECT finding, last_seen, expires_at").
		WithArgs("old").
		WillReturnRows(sqlmock.NewRows(verdictColumns).AddRow("{}", now.Add(-2*time.Hour).Unix(), now.Add(-time.Hour).Unix()))
	_, err = c.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrExpired)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCache_CleanupAndErrors(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c, mock := setupMySQLCache(t, now)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM lovescan_verdicts WHERE expires_at").
		WithArgs(now.Unix()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, c.Cleanup(ctx))

	mock.ExpectExec("DELETE FROM lovescan_verdicts WHERE cache_key").
		WithArgs("k1").
		WillReturnError(errors.New("connection reset"))
	err := c.Delete(ctx, "k1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSQLCache_SchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("access denied"))
	mock.ExpectClose()

	_, err = newSQLCache(db, mysqlDialect, zap.NewNop(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create mysql schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}
