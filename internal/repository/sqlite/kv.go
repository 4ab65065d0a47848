package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/family-meal-planner/internal/repository"
)

var _ repository.KeyValueStore = (*DB)(nil)

// Get returns the value stored under key. A key that was never written
// reports ok=false.
func (db *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sqlite: getting %s: %w", key, err)
	}

	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (db *DB) Set(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value      = excluded.value,
		   updated_at = excluded.updated_at`,
		key,
		value,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting %s: %w", key, err)
	}

	return nil
}

// Remove deletes key. Removing a missing key is not an error, matching
// localStorage.removeItem.
func (db *DB) Remove(ctx context.Context, key string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite: removing %s: %w", key, err)
	}
	return nil
}
