package db_test

import (
	"path/filepath"
	"testing"

	"glidescope/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}

	// The settings table must exist after migration.
	if _, err := d.Exec("INSERT INTO persistent_state (key, value) VALUES ('probe', 'ok')"); err != nil {
		t.Fatalf("insert into persistent_state failed: %v", err)
	}

	d.Close()

	// Reopening must keep existing rows.
	d, err = db.Init(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer d.Close()

	var val string
	if err := d.QueryRow("SELECT value FROM persistent_state WHERE key = 'probe'").Scan(&val); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if val != "ok" {
		t.Errorf("value = %q, want ok", val)
	}
}
