// Package db opens the SQLite settings database. Runtime settings are
// the only thing persisted; telemetry and glide segments stay in memory
// for the session.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Register driver
)

// schema is idempotent and runs on every start.
const schema = `
CREATE TABLE IF NOT EXISTS persistent_state (
	key TEXT PRIMARY KEY,
	value TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens or creates the database at path and bootstraps the schema.
// The special path ":memory:" skips directory creation.
func Init(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	// Single writer connection; WAL plus a long busy timeout covers
	// the occasional concurrent reader.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=30000;",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{sqlDB}
	if _, err := d.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return d, nil
}
