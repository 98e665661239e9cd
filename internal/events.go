package internal

import "fmt"

// EventType identifies the kind of canonical event on the wire.
type EventType string

const (
	EventSessionCreated EventType = "session_created"
	EventPhaseChanged   EventType = "phase"
	EventAgentMessage   EventType = "agent_message"
	EventToolCall       EventType = "tool_call"
	EventToolResult     EventType = "tool_result"
	EventFileStart      EventType = "file_start"
	EventContentChunk   EventType = "content"
	EventFileEnd        EventType = "file_end"
	EventComplete       EventType = "complete"
	EventError          EventType = "error"
)

// Terminal reports whether an event of this type ends the stream.
func (t EventType) Terminal() bool {
	return t == EventComplete || t == EventError
}

// EventMeta carries optional metadata on file and completion events.
type EventMeta struct {
	Size       int    `json:"size,omitempty"`
	TotalFiles int    `json:"total_files,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Event is the stable, client-facing unit. It is a closed tagged union: the
// Type field discriminates, and only the fields for that variant are set.
// Events serialize to one self-describing JSON object per wire line.
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Phase     Phase                  `json:"phase,omitempty"`
	Author    string                 `json:"author,omitempty"`
	Content   string                 `json:"content,omitempty"`
	Final     bool                   `json:"final,omitempty"`
	Tool      string                 `json:"tool,omitempty"`
	Args      map[string]interface{} `json:"args,omitempty"`
	Result    map[string]interface{} `json:"result,omitempty"`
	FilePath  string                 `json:"file_path,omitempty"`
	Metadata  *EventMeta             `json:"metadata,omitempty"`
	Message   string                 `json:"message,omitempty"`
}

// NewSessionCreated announces the session a run is bound to.
func NewSessionCreated(sessionID string) Event {
	return Event{
		Type:      EventSessionCreated,
		SessionID: sessionID,
		Message:   "Session initialized",
	}
}

// NewPhaseChanged reports a workflow phase transition.
func NewPhaseChanged(phase Phase) Event {
	return Event{Type: EventPhaseChanged, Phase: phase}
}

// NewAgentMessage carries stage output text to the client.
func NewAgentMessage(author, content string, final bool) Event {
	return Event{Type: EventAgentMessage, Author: author, Content: content, Final: final}
}

// NewToolCall reports a tool invocation by a pipeline stage.
func NewToolCall(tool string, args map[string]interface{}) Event {
	return Event{Type: EventToolCall, Tool: tool, Args: args}
}

// NewToolResult reports the outcome of a tool invocation.
func NewToolResult(tool string, result map[string]interface{}) Event {
	return Event{Type: EventToolResult, Tool: tool, Result: result}
}

// NewFileStart opens the per-file sub-stream for one extracted file.
func NewFileStart(path string, size int) Event {
	return Event{
		Type:     EventFileStart,
		FilePath: path,
		Metadata: &EventMeta{Size: size},
	}
}

// NewContentChunk carries one bounded slice of a file's content.
func NewContentChunk(path, chunk string) Event {
	return Event{Type: EventContentChunk, FilePath: path, Content: chunk}
}

// NewFileEnd closes the per-file sub-stream.
func NewFileEnd(path string) Event {
	return Event{Type: EventFileEnd, FilePath: path}
}

// NewComplete terminates a successful stream.
func NewComplete(sessionID string, fileCount int) Event {
	return Event{
		Type:      EventComplete,
		SessionID: sessionID,
		Metadata: &EventMeta{
			TotalFiles: fileCount,
			Message:    completeMessage(fileCount),
		},
	}
}

// NewError terminates a failed stream.
func NewError(message string) Event {
	return Event{Type: EventError, Message: message}
}

func completeMessage(fileCount int) string {
	return fmt.Sprintf("Generated %d file(s) successfully", fileCount)
}
