package testutil

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database with the session schema
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// A second pooled connection would see an empty database.
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, updated_at DESC);

	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		actor TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, id)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create session schema: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedSession inserts a session row with the given state JSON
func SeedSession(t *testing.T, db *sql.DB, id, userID, stateJSON string) {
	t.Helper()
	if stateJSON == "" {
		stateJSON = "{}"
	}
	now := time.Now().UnixMilli()
	insertSQL := "INSERT INTO sessions (id, user_id, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := db.Exec(insertSQL, id, userID, stateJSON, now, now); err != nil {
		t.Fatalf("Failed to seed session %s: %v", id, err)
	}
}

// SeedTurn inserts a conversation turn for a session
func SeedTurn(t *testing.T, db *sql.DB, sessionID, actor, content string) {
	t.Helper()
	insertSQL := "INSERT INTO turns (session_id, actor, content, created_at) VALUES (?, ?, ?, ?)"
	if _, err := db.Exec(insertSQL, sessionID, actor, content, time.Now().UnixMilli()); err != nil {
		t.Fatalf("Failed to seed turn for %s: %v", sessionID, err)
	}
}

// CreateTestDB creates an in-memory database with sample sessions
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	SeedSession(t, db, "session1", "default_user", `{"generated_files":[{"path":"src/App.jsx","content":"export default function App() {}","language":"jsx"}]}`)
	SeedSession(t, db, "session2", "default_user", "{}")
	SeedSession(t, db, "session3", "other_user", "{}")

	SeedTurn(t, db, "session1", "user", "Build a counter app")
	SeedTurn(t, db, "session1", "planning_agent", "Planning: a counter component with increment and decrement.")

	return db
}
