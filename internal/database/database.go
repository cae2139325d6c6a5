package database

import (
	"database/sql"
	"fmt"
	"time"

	"flightshots/internal/kvstore"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Open connects to the given driver, runs migrations and reports the
// placeholder dialect the kv backend should use.
func Open(driver, connStr string) (*sql.DB, kvstore.Dialect, error) {
	var (
		sqlDriver string
		dialect   kvstore.Dialect
	)
	switch driver {
	case DriverPostgres:
		sqlDriver, dialect = "pgx", kvstore.Postgres
	case DriverSQLite:
		sqlDriver, dialect = "sqlite3", kvstore.SQLite
	default:
		return nil, 0, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, connStr)
	if err != nil {
		return nil, 0, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		// Single writer; WAL keeps readers off the writer's back.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, 0, fmt.Errorf("enable WAL mode: %w", err)
		}
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("run migrations: %w", err)
	}

	return db, dialect, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_kv_entries_updated ON kv_entries(updated_at)`); err != nil {
		return fmt.Errorf("create updated_at index: %w", err)
	}
	return nil
}
