package internal

import (
	"encoding/json"
	"time"
)

// DefaultUserID is used when the boundary supplies no user identifier.
const DefaultUserID = "default_user"

// StateKeyGeneratedFiles is the well-known state bag key under which a
// backend may deposit structured output instead of emitting it as text.
const StateKeyGeneratedFiles = "generated_files"

// StateKeyLastValidation holds the review stage's most recent tool summary.
const StateKeyLastValidation = "last_validation"

// GenerationRequest is the validated input for one workflow run.
type GenerationRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id,omitempty"`
	Framework string `json:"framework,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// Normalize fills in boundary defaults.
func (r *GenerationRequest) Normalize() {
	if r.Framework == "" {
		r.Framework = "react"
	}
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
}

// GeneratedFile is one extracted output file. Immutable once produced.
type GeneratedFile struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

// Turn is one entry in a session's conversation history.
type Turn struct {
	Actor     string    `json:"actor"` // "user" or a pipeline stage name
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is durable conversational context keyed by (user, id). The state
// bag carries arbitrary values the pipeline stages leave behind between turns.
type Session struct {
	ID        string                 `json:"session_id"`
	UserID    string                 `json:"user_id"`
	State     map[string]interface{} `json:"state"`
	History   []Turn                 `json:"-"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// SetState stores a value in the session state bag.
func (s *Session) SetState(key string, value interface{}) {
	if s.State == nil {
		s.State = make(map[string]interface{})
	}
	s.State[key] = value
}

// GeneratedFiles decodes the structured output value from the state bag, if
// present. It tolerates both in-memory []GeneratedFile values and the
// map-shaped form a JSON round trip through the store produces.
func (s *Session) GeneratedFiles() ([]GeneratedFile, bool) {
	raw, ok := s.State[StateKeyGeneratedFiles]
	if !ok || raw == nil {
		return nil, false
	}

	if files, ok := raw.([]GeneratedFile); ok {
		return files, len(files) > 0
	}

	// Anything else went through JSON at some point; round trip it back.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}
	var files []GeneratedFile
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, false
	}
	return files, len(files) > 0
}
