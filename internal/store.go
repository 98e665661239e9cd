package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore provides durable (user, session) conversation state. Reads
// and writes for a given session id are linearizable: all mutations run
// under a store-level mutex on top of sqlite's single-writer transactions,
// so two concurrent requests touching the same id never lose updates.
type SessionStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSessionStore creates a store over an initialized database.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// GetOrCreate resolves a session for the user. A supplied id that resolves
// returns the existing session with its state bag and history intact. Any
// lookup failure is treated as not-found and falls back to creating a fresh
// session; the caller always gets a usable session. Creation persists the
// new record before returning.
func (s *SessionStore) GetOrCreate(ctx context.Context, userID, sessionID string) (*Session, error) {
	if sessionID != "" {
		sess, err := s.get(ctx, userID, sessionID)
		if err == nil {
			return sess, nil
		}
		if err != ErrNotFound {
			LogWarn("session lookup failed, creating new session: %v", err)
		}
	}

	return s.create(ctx, userID)
}

func (s *SessionStore) get(ctx context.Context, userID, sessionID string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, state, created_at, updated_at FROM sessions WHERE id = ? AND user_id = ?",
		sessionID, userID)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "get", SessionID: sessionID, Err: err}
	}

	history, err := s.loadHistory(ctx, sessionID)
	if err != nil {
		return nil, &StoreError{Op: "get", SessionID: sessionID, Err: err}
	}
	sess.History = history

	return sess, nil
}

func (s *SessionStore) create(ctx context.Context, userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     make(map[string]interface{}),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, state, created_at, updated_at) VALUES (?, ?, '{}', ?, ?)",
		sess.ID, sess.UserID, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, &StoreError{Op: "create", SessionID: sess.ID, Err: err}
	}

	LogDebug("created session %s for user %s", sess.ID, userID)
	return sess, nil
}

// SaveState persists the session's state bag and bumps its update time.
func (s *SessionStore) SaveState(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := json.Marshal(sess.State)
	if err != nil {
		return &StoreError{Op: "update", SessionID: sess.ID, Err: err}
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET state = ?, updated_at = ? WHERE id = ?",
		string(state), now.UnixMilli(), sess.ID)
	if err != nil {
		return &StoreError{Op: "update", SessionID: sess.ID, Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	sess.UpdatedAt = now
	return nil
}

// AppendTurn records one conversation turn in the session history.
func (s *SessionStore) AppendTurn(ctx context.Context, sessionID, actor, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO turns (session_id, actor, content, created_at) VALUES (?, ?, ?, ?)",
		sessionID, actor, content, now.UnixMilli())
	if err != nil {
		return &StoreError{Op: "update", SessionID: sessionID, Err: err}
	}
	return nil
}

// Clear removes a session and its history.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return &StoreError{Op: "clear", SessionID: sessionID, Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of the user's sessions, most recently updated first,
// along with the total count. Pagination is 1-indexed; out-of-range pages
// return an empty slice, not an error.
func (s *SessionStore) List(ctx context.Context, userID string, page, pageSize int) ([]*Session, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, 0, &StoreError{Op: "list", Err: err}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, state, created_at, updated_at FROM sessions WHERE user_id = ? ORDER BY updated_at DESC, id LIMIT ? OFFSET ?",
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	sessions := make([]*Session, 0, pageSize)
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, 0, &StoreError{Op: "list", Err: err}
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &StoreError{Op: "list", Err: err}
	}

	return sessions, total, nil
}

func (s *SessionStore) loadHistory(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT actor, content, created_at FROM turns WHERE session_id = ? ORDER BY id",
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []Turn
	for rows.Next() {
		var (
			turn Turn
			ts   int64
		)
		if err := rows.Scan(&turn.Actor, &turn.Content, &ts); err != nil {
			return nil, err
		}
		turn.CreatedAt = time.UnixMilli(ts).UTC()
		history = append(history, turn)
	}
	return history, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		sess      Session
		state     string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&sess.ID, &sess.UserID, &state, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(state), &sess.State); err != nil {
		return nil, fmt.Errorf("corrupt state bag: %w", err)
	}
	sess.CreatedAt = time.UnixMilli(createdAt).UTC()
	sess.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &sess, nil
}
