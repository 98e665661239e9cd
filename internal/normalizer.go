package internal

// Normalizer converts backend-native events to canonical client events.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize maps one raw event to at most one canonical event. Rules are
// checked in order and only the first match fires; a single backend turn
// carries one semantic payload. Returns nil when the event should be skipped.
func (n *Normalizer) Normalize(raw *RawEvent) *Event {
	if raw == nil || !raw.HasContent() {
		return nil
	}

	if text := raw.JoinedText(); text != "" {
		ev := NewAgentMessage(raw.Author, text, raw.Final)
		return &ev
	}

	if call := raw.FirstCall(); call != nil {
		ev := NewToolCall(call.Name, call.Args)
		return &ev
	}

	if resp := raw.FirstResponse(); resp != nil {
		ev := NewToolResult(resp.Name, resp.Result)
		return &ev
	}

	return nil
}
