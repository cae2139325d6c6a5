package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// SQLBackend keeps entries in the kv_entries table created by database.Open.
type SQLBackend struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQL(db *sql.DB, dialect Dialect) *SQLBackend {
	return &SQLBackend{db: db, dialect: dialect}
}

func (b *SQLBackend) ph(n int) string {
	if b.dialect == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key = `+b.ph(1), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select entry: %w", err)
	}
	return []byte(value), nil
}

func (b *SQLBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO kv_entries (key, value, updated_at) VALUES (%s, %s, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		b.ph(1), b.ph(2)),
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

func (b *SQLBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = `+b.ph(1), key); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}
