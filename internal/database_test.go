package internal

import (
	"path/filepath"
	"testing"
)

func TestOpenDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	// Schema is created on open.
	for _, table := range []string{"sessions", "turns"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenDatabaseReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	if _, err := db.Exec(
		"INSERT INTO sessions (id, user_id, state, created_at, updated_at) VALUES ('s1', 'u', '{}', 0, 0)"); err != nil {
		t.Fatalf("insert error = %v", err)
	}
	_ = db.Close()

	db, err = OpenDatabase(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = db.Close() }()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("sessions after reopen = %d, want 1", count)
	}
}
