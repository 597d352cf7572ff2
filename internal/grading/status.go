package grading

// Status summarizes where a response or submission sits in the grading
// lifecycle. It is derived on every read and never persisted; storing it
// would let it go stale against the score fields it is computed from.
type Status string

const (
	// StatusPending means no score from either source yet.
	StatusPending Status = "pending"
	// StatusAIGraded is a display synonym for StatusAwaitingOverride used
	// by badge call sites that emphasize "never touched by a teacher".
	// ResolveStatus never returns it.
	StatusAIGraded Status = "ai-graded"
	// StatusAwaitingOverride means the AI has scored but no teacher has acted.
	StatusAwaitingOverride Status = "awaiting-override"
	// StatusOverridden means a teacher score or teacher feedback is present.
	StatusOverridden Status = "overridden"
)

// ResolveStatus derives the grading status from the presence of the three
// inputs. It is total over all eight combinations. Teacher involvement
// dominates regardless of AI state.
func ResolveStatus(aiPresent, teacherPresent, feedbackPresent bool) Status {
	switch {
	case teacherPresent || feedbackPresent:
		return StatusOverridden
	case aiPresent:
		return StatusAwaitingOverride
	default:
		return StatusPending
	}
}

// ResolveScores is ResolveStatus for nullable score fields. A nil pointer
// counts as absent, which keeps malformed upstream input pending-leaning.
func ResolveScores(aiScore, teacherScore *Fraction, teacherFeedback string) Status {
	return ResolveStatus(aiScore != nil, teacherScore != nil, teacherFeedback != "")
}

// BadgeLabel returns the human-readable label for a status. The
// awaiting-override state has two synonymous labels; aiGradedStyle selects
// the "AI Graded" rendering used where the UI distinguishes "scored by AI"
// from "teacher may still act".
func (s Status) BadgeLabel(aiGradedStyle bool) string {
	switch s {
	case StatusOverridden:
		return "Teacher Reviewed"
	case StatusAwaitingOverride, StatusAIGraded:
		if aiGradedStyle {
			return "AI Graded"
		}
		return "Awaiting Review"
	default:
		return "Pending"
	}
}
