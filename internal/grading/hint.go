package grading

import (
	"fmt"
	"strings"
)

// DefaultSuggestionLimit caps how many missing-concept suggestions a hint
// carries so the learner is not overwhelmed.
const DefaultSuggestionLimit = 3

// LessonRef points at a lesson the student can review. Lesson selection
// happens upstream; hints only pass the reference through.
type LessonRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// HintData is the per-response input to hint synthesis.
type HintData struct {
	QuestionType    string
	StudentAnswer   string
	ModelAnswer     string
	AIFeedback      string
	MatchedKeywords []string
	RubricKeywords  []string
	LinkedLesson    *LessonRef
}

// Hint is the synthesized pedagogical feedback shown to a student.
type Hint struct {
	Praise       string     `json:"praise,omitempty"`
	Suggestions  []string   `json:"suggestions"`
	LinkedLesson *LessonRef `json:"linked_lesson,omitempty"`
}

// MakeHint synthesizes feedback from rubric-keyword signals. It returns nil
// for non-short-answer questions and for responses the AI has not yet
// reacted to. Output is deterministic for identical input. Suggestions are
// emitted in rubric order so pedagogically sequenced rubrics stay sequenced.
func MakeHint(data HintData, limit int) *Hint {
	if data.QuestionType != "short" || strings.TrimSpace(data.AIFeedback) == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	matched := make(map[string]bool, len(data.MatchedKeywords))
	for _, keyword := range data.MatchedKeywords {
		matched[strings.ToLower(strings.TrimSpace(keyword))] = true
	}

	missing := make([]string, 0, len(data.RubricKeywords))
	hits := 0
	for _, keyword := range data.RubricKeywords {
		if matched[strings.ToLower(strings.TrimSpace(keyword))] {
			hits++
		} else {
			missing = append(missing, keyword)
		}
	}

	hint := &Hint{LinkedLesson: data.LinkedLesson}

	if hits > 0 {
		concept := "key concepts"
		if hits == 1 {
			concept = "key concept"
		}
		hint.Praise = fmt.Sprintf("Good work! You correctly identified %d %s in your answer.", hits, concept)
	}

	if len(missing) == 0 {
		hint.Suggestions = []string{
			"All key concepts are covered. Refine your wording and add a concrete example to make the answer even stronger.",
		}
		return hint
	}

	count := len(missing)
	if count > limit {
		count = limit
	}
	hint.Suggestions = make([]string, 0, count)
	for _, keyword := range missing[:count] {
		hint.Suggestions = append(hint.Suggestions,
			fmt.Sprintf("Your answer does not mention %q yet. Try working that concept into your explanation.", keyword))
	}

	return hint
}
