package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

// DefaultChunkSize is the fixed size of streamed file content slices.
const DefaultChunkSize = 100

// ErrStreamClosed is returned when an event is emitted after a terminal
// Complete or Error event.
var ErrStreamClosed = errors.New("event stream already terminated")

// StreamEncoder serializes canonical events to the wire: one JSON object per
// line, each wrapped as a server-push block ("data: " + line + "\n\n"), and
// flushed immediately so clients see partial results. Once a terminal event
// has been written, further emits fail with ErrStreamClosed.
type StreamEncoder struct {
	w         io.Writer
	flusher   http.Flusher
	chunkSize int
	closed    bool
}

// NewStreamEncoder wraps a response writer. If w implements http.Flusher,
// every event is flushed as it is written.
func NewStreamEncoder(w io.Writer) *StreamEncoder {
	enc := &StreamEncoder{w: w, chunkSize: DefaultChunkSize}
	if f, ok := w.(http.Flusher); ok {
		enc.flusher = f
	}
	return enc
}

// SetChunkSize overrides the content chunk size. Values below one are ignored.
func (e *StreamEncoder) SetChunkSize(n int) {
	if n > 0 {
		e.chunkSize = n
	}
}

// Emit writes one event to the wire.
func (e *StreamEncoder) Emit(ev Event) error {
	if e.closed {
		return ErrStreamClosed
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", line); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}

	if ev.Type.Terminal() {
		e.closed = true
	}
	return nil
}

// EmitFile streams one extracted file as a FileStart event, its content in
// bounded chunks in order, and a FileEnd event. Chunk boundaries never split
// a UTF-8 rune, so concatenating the chunks reproduces the content exactly.
func (e *StreamEncoder) EmitFile(f GeneratedFile) error {
	if err := e.Emit(NewFileStart(f.Path, len(f.Content))); err != nil {
		return err
	}

	for i := 0; i < len(f.Content); {
		end := i + e.chunkSize
		if end >= len(f.Content) {
			end = len(f.Content)
		} else {
			for end > i && !utf8.RuneStart(f.Content[end]) {
				end--
			}
			if end == i {
				// Rune wider than the chunk size; emit it whole.
				_, size := utf8.DecodeRuneInString(f.Content[i:])
				end = i + size
			}
		}
		if err := e.Emit(NewContentChunk(f.Path, f.Content[i:end])); err != nil {
			return err
		}
		i = end
	}

	return e.Emit(NewFileEnd(f.Path))
}
