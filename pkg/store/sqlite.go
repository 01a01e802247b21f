package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"glidescope/pkg/db"
)

// Store is the repository interface. Consumers should depend on the
// narrower sub-interfaces where possible.
type Store interface {
	StateStore

	Close() error
}

// SQLiteStore implements Store on the settings database.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore wraps an initialized database.
func NewSQLiteStore(d *db.DB) *SQLiteStore {
	return &SQLiteStore{db: d}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetState returns the stored value for key. Missing keys and read
// errors both report false, so callers fall back to the static config.
func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Settings read failed", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

// SetState inserts or replaces the value for key.
func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)",
		key, val, time.Now())
	return err
}

// DeleteState removes key. Deleting a missing key is not an error.
func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
