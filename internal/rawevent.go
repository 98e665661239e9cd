package internal

import "strings"

// RawEvent is one backend-native generation event. It mirrors the shape the
// staged pipeline produces: an author tag identifying the stage, a final
// marker, and a list of parts each carrying text, a tool invocation, or a
// tool response. RawEvents are transient; they are normalized and discarded.
type RawEvent struct {
	Author string
	Final  bool
	Parts  []Part
}

// Part is one payload element of a raw event.
type Part struct {
	Text     string
	Call     *ToolInvocation
	Response *ToolOutcome
}

// ToolInvocation is a tool call requested by a stage.
type ToolInvocation struct {
	Name string
	Args map[string]interface{}
}

// ToolOutcome is the result a tool returned to a stage.
type ToolOutcome struct {
	Name   string
	Result map[string]interface{}
}

// HasContent reports whether the event carries any payload at all.
func (e *RawEvent) HasContent() bool {
	return len(e.Parts) > 0
}

// JoinedText concatenates the text of all text parts.
func (e *RawEvent) JoinedText() string {
	var b strings.Builder
	for _, p := range e.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// FirstCall returns the first tool invocation part, if any.
func (e *RawEvent) FirstCall() *ToolInvocation {
	for _, p := range e.Parts {
		if p.Call != nil {
			return p.Call
		}
	}
	return nil
}

// FirstResponse returns the first tool response part, if any.
func (e *RawEvent) FirstResponse() *ToolOutcome {
	for _, p := range e.Parts {
		if p.Response != nil {
			return p.Response
		}
	}
	return nil
}

// TextEvent builds a raw event holding a single text part.
func TextEvent(author, text string, final bool) RawEvent {
	return RawEvent{
		Author: author,
		Final:  final,
		Parts:  []Part{{Text: text}},
	}
}
