package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassifyBackendError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "rate limit",
			err:  errors.New("429: rate limit exceeded for requests"),
			want: "Rate limit exceeded. Please wait a moment and try again.",
		},
		{
			name: "rate limit snake case",
			err:  errors.New("rate_limit_error: too many requests"),
			want: "Rate limit exceeded. Please wait a moment and try again.",
		},
		{
			name: "api key",
			err:  errors.New("invalid api key provided"),
			want: "Invalid or missing API key. Please check your configuration.",
		},
		{
			name: "authentication",
			err:  errors.New("401 authentication_error"),
			want: "Invalid or missing API key. Please check your configuration.",
		},
		{
			name: "overloaded",
			err:  errors.New("529: overloaded_error"),
			want: "The model is currently overloaded. Please try again shortly.",
		},
		{
			name: "model not found",
			err:  errors.New("not_found_error: model claude-x does not exist"),
			want: "The configured model was not found. Please check your configuration.",
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: "Generation timed out. Please try again.",
		},
		{
			name: "wrapped deadline",
			err:  fmt.Errorf("stage failed: %w", context.DeadlineExceeded),
			want: "Generation timed out. Please try again.",
		},
		{
			name: "unknown",
			err:  errors.New("something odd happened"),
			want: "Error generating code: something odd happened",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyBackendError(tt.err); got != tt.want {
				t.Errorf("ClassifyBackendError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyBackendErrorUnwrapsPipelineError(t *testing.T) {
	err := &PipelineError{Stage: StageCodeGenerator, Err: errors.New("429: rate limited")}
	got := ClassifyBackendError(err)
	if !strings.Contains(got, "Rate limit") {
		t.Errorf("ClassifyBackendError() = %q, want rate limit message", got)
	}
}

func TestStoreErrorUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := &StoreError{Op: "create", SessionID: "abc", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("StoreError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "create") || !strings.Contains(err.Error(), "abc") {
		t.Errorf("Error() = %q, want op and session id", err.Error())
	}
}

func TestPipelineErrorUnwrap(t *testing.T) {
	err := &PipelineError{Stage: StagePlanning, Err: context.DeadlineExceeded}

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("PipelineError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), StagePlanning) {
		t.Errorf("Error() = %q, want stage name", err.Error())
	}
}
