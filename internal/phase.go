package internal

import "strings"

// Phase is the workflow state visible to the client. Within one request it
// only moves forward; a message that matches no marker leaves it unchanged.
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhasePlanning     Phase = "planning"
	PhaseGenerating   Phase = "generating"
	PhaseReviewing    Phase = "reviewing"
	PhaseComplete     Phase = "complete"
	PhaseFailed       Phase = "failed"
)

// PhaseForAuthor maps a pipeline stage author tag to its phase. This is the
// explicit signal preferred over content inference when the backend tags
// events with a known stage name.
func PhaseForAuthor(author string) (Phase, bool) {
	switch author {
	case StagePlanning:
		return PhasePlanning, true
	case StageCodeGenerator:
		return PhaseGenerating, true
	case StageReview:
		return PhaseReviewing, true
	default:
		return "", false
	}
}

// InferPhase derives the next phase from message text. Matching is a
// case-insensitive substring search, which is fragile (generated text that
// merely mentions "review" will trigger a transition); it exists for
// backends that do not tag events with a stage author.
func InferPhase(current Phase, text string) Phase {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "planning"):
		return PhasePlanning
	case strings.Contains(lower, "generat"):
		return PhaseGenerating
	case strings.Contains(lower, "review"):
		return PhaseReviewing
	default:
		return current
	}
}
