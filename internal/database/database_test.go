package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"flightshots/internal/kvstore"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateExecutesSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv_entries`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_kv_entries_updated`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, migrate(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, _, err := Open("mysql", "")
	assert.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	db, dialect, err := Open(DriverSQLite, path)
	if err != nil && strings.Contains(err.Error(), "CGO_ENABLED") {
		t.Skip("sqlite3 driver needs cgo")
	}
	require.NoError(t, err)

	assert.Equal(t, kvstore.SQLite, dialect)

	ctx := context.Background()
	store := kvstore.New(kvstore.NewSQL(db, dialect), "darn-", nil)
	defer store.Close()

	kvstore.Write(ctx, store, kvstore.KeyFeedbacks, []string{"first"})
	kvstore.Write(ctx, store, kvstore.KeyFeedbacks, []string{"second"})
	assert.Equal(t, []string{"second"}, kvstore.Read(ctx, store, kvstore.KeyFeedbacks, []string(nil)))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv_entries`).Scan(&n))
	assert.Equal(t, 1, n)
}
