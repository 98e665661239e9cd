package internal

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Sink is where a run's canonical events go. StreamEncoder is the production
// implementation.
type Sink interface {
	Emit(ev Event) error
	EmitFile(f GeneratedFile) error
}

// Runner drives one generation run: it resolves the session, executes the
// backend, normalizes its raw events, tracks phase transitions, and closes
// the run with the extracted files and a terminal event.
type Runner struct {
	store   *SessionStore
	backend Backend
	norm    *Normalizer
	timeout time.Duration
}

// NewRunner wires a runner from its collaborators. A zero timeout disables
// the per-run deadline.
func NewRunner(store *SessionStore, backend Backend, timeout time.Duration) *Runner {
	return &Runner{
		store:   store,
		backend: backend,
		norm:    NewNormalizer(),
		timeout: timeout,
	}
}

// Run executes a generation request and writes every event to sink. Errors
// from the backend surface as a terminal Error event; the returned error
// covers sink and store failures only.
func (r *Runner) Run(ctx context.Context, req GenerationRequest, sink Sink) error {
	req.Normalize()
	runID := ulid.Make().String()

	// Cancel unconditionally on return so an abandoned backend producer is
	// never left blocked in send after an early sink failure.
	var cancel context.CancelFunc
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	sess, err := r.store.GetOrCreate(ctx, req.UserID, req.SessionID)
	if err != nil {
		LogError("run %s: session setup failed: %v", runID, err)
		return sink.Emit(NewError(ClassifyBackendError(err)))
	}
	LogInfo("run %s: session %s prompt %q", runID, sess.ID, truncate(req.Prompt, 80))

	// Structured output left by a previous turn must not shadow this turn's
	// backend output; the state-bag check below is for deposits made now.
	delete(sess.State, StateKeyGeneratedFiles)

	if err := sink.Emit(NewSessionCreated(sess.ID)); err != nil {
		return err
	}
	if err := sink.Emit(NewPhaseChanged(PhaseInitializing)); err != nil {
		return err
	}

	if err := r.store.AppendTurn(ctx, sess.ID, "user", req.Prompt); err != nil {
		LogWarn("run %s: failed to record user turn: %v", runID, err)
	}

	phase := PhaseInitializing
	var finals []string

	stream := r.backend.Run(ctx, sess, req.Prompt)
	for raw := range stream.Events() {
		next := r.phaseFor(phase, &raw)
		if next != phase {
			phase = next
			if err := sink.Emit(NewPhaseChanged(phase)); err != nil {
				return err
			}
		}

		ev := r.norm.Normalize(&raw)
		if ev == nil {
			continue
		}
		if err := sink.Emit(*ev); err != nil {
			return err
		}

		if raw.Final && ev.Type == EventAgentMessage {
			finals = append(finals, ev.Content)
			if err := r.store.AppendTurn(ctx, sess.ID, raw.Author, ev.Content); err != nil {
				LogWarn("run %s: failed to record %s turn: %v", runID, raw.Author, err)
			}
		}
	}

	if err := stream.Err(); err != nil {
		LogError("run %s: backend failed: %v", runID, err)
		return sink.Emit(NewError(ClassifyBackendError(err)))
	}

	files := r.collectFiles(sess, finals)
	if len(files) == 0 {
		LogWarn("run %s: no files produced", runID)
		return sink.Emit(NewError("No files were generated. Please try rephrasing your request."))
	}

	sess.SetState(StateKeyGeneratedFiles, files)
	if err := r.store.SaveState(ctx, sess); err != nil {
		LogWarn("run %s: failed to persist session state: %v", runID, err)
	}

	if err := sink.Emit(NewPhaseChanged(PhaseComplete)); err != nil {
		return err
	}
	for _, f := range files {
		if err := sink.EmitFile(f); err != nil {
			return err
		}
	}
	LogInfo("run %s: completed with %d file(s)", runID, len(files))
	return sink.Emit(NewComplete(sess.ID, len(files)))
}

// phaseFor resolves the phase implied by a raw event. The author mapping
// wins; text heuristics only apply when the author is unknown.
func (r *Runner) phaseFor(current Phase, raw *RawEvent) Phase {
	if p, ok := PhaseForAuthor(raw.Author); ok {
		return p
	}
	return InferPhase(current, raw.JoinedText())
}

// collectFiles prefers structured output recorded in session state; failing
// that it extracts fenced blocks from the backend's final messages.
func (r *Runner) collectFiles(sess *Session, finals []string) []GeneratedFile {
	if files, ok := sess.GeneratedFiles(); ok && len(files) > 0 {
		return files
	}
	return ExtractFiles(strings.Join(finals, "\n\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
