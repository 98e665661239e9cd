package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates the requested session does not exist.
var ErrNotFound = errors.New("session not found")

// StoreError represents errors accessing the session store
type StoreError struct {
	Op        string // "create", "get", "list", "clear", "update"
	SessionID string
	Err       error
}

func (e *StoreError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// PipelineError represents errors raised by the generation backend
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("pipeline error: %v", e.Err)
	}
	return fmt.Sprintf("pipeline error [%s]: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ClassifyBackendError maps a backend failure to a human-readable message.
// Classification is by substring match on the underlying failure description;
// anything unrecognized gets a generic wrapped message.
func ClassifyBackendError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Generation timed out. Please try again."
	}
	desc := strings.ToLower(err.Error())
	switch {
	case strings.Contains(desc, "rate limit") || strings.Contains(desc, "rate_limit") || strings.Contains(desc, "429"):
		return "Rate limit exceeded. Please wait a moment and try again."
	case strings.Contains(desc, "api key") || strings.Contains(desc, "api_key") ||
		strings.Contains(desc, "authentication") || strings.Contains(desc, "unauthorized") ||
		strings.Contains(desc, "401"):
		return "Invalid or missing API key. Please check your configuration."
	case strings.Contains(desc, "overloaded") || strings.Contains(desc, "529"):
		return "The model is currently overloaded. Please try again shortly."
	case strings.Contains(desc, "not_found") && strings.Contains(desc, "model"),
		strings.Contains(desc, "not found") && strings.Contains(desc, "model"):
		return "The configured model was not found. Please check your configuration."
	default:
		return fmt.Sprintf("Error generating code: %v", err)
	}
}
