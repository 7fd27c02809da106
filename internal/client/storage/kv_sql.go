package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLKV implements KV on top of the kv_entries table.
// Queries use $n placeholders, understood by both lib/pq and modernc sqlite.
type SQLKV struct {
	// DB is the database handle for executing queries.
	DB *sql.DB

	now func() time.Time
}

// NewSQLKV creates a SQLKV using the provided *sql.DB.
// The kv_entries table must already exist (see InitSQL).
func NewSQLKV(db *sql.DB) *SQLKV {
	return &SQLKV{DB: db, now: time.Now}
}

// Get returns the live value stored under key.
func (s *SQLKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, `
		SELECT value FROM kv_entries WHERE name = $1 AND (expires_at = 0 OR expires_at > $2)
	`, key, s.now().Unix()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (s *SQLKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv_entries (name, value, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`, key, value, expiresAt(s.now(), ttl))
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *SQLKV) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_entries WHERE name = $1`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
