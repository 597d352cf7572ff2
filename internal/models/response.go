package models

import (
	"github.com/classpulse/grading-gateway/internal/grading"
)

// Question types produced by the upstream grading service.
const (
	QuestionTypeMCQ   = "mcq"
	QuestionTypeShort = "short"
)

// QuestionResponse is one student's answer to one question within a
// submission, as scored by the upstream grading service. MCQ responses
// carry a correctness flag instead of AI score fields.
type QuestionResponse struct {
	ID              int64              `json:"id"`
	QuestionID      int64              `json:"question_id"`
	Type            string             `json:"type"`
	Prompt          string             `json:"prompt"`
	StudentAnswer   string             `json:"student_answer"`
	ModelAnswer     string             `json:"model_answer,omitempty"`
	AIScore         *grading.Fraction  `json:"ai_score"`
	AIFeedback      string             `json:"ai_feedback,omitempty"`
	TeacherScore    *grading.Fraction  `json:"teacher_score"`
	TeacherFeedback string             `json:"teacher_feedback,omitempty"`
	MatchedKeywords []string           `json:"matched_keywords,omitempty"`
	RubricKeywords  []string           `json:"rubric_keywords,omitempty"`
	IsMCQCorrect    *bool              `json:"is_mcq_correct,omitempty"`
	LinkedLesson    *grading.LessonRef `json:"linked_lesson,omitempty"`
}

// IsShortAnswer reports whether the response is eligible for AI scoring
// and hint synthesis.
func (r QuestionResponse) IsShortAnswer() bool {
	return r.Type == QuestionTypeShort
}

// EffectiveScore returns the authoritative score for display: the teacher
// override when present, otherwise the AI score, otherwise nil.
func (r QuestionResponse) EffectiveScore() *grading.Fraction {
	if r.TeacherScore != nil {
		return r.TeacherScore
	}
	return r.AIScore
}

// Status derives the grading status for this response.
func (r QuestionResponse) Status() grading.Status {
	return grading.ResolveScores(r.AIScore, r.TeacherScore, r.TeacherFeedback)
}

// SeedScore is the value the override form is pre-populated with so
// teachers never re-enter a score the system already holds an opinion on.
func (r QuestionResponse) SeedScore() grading.Fraction {
	if r.TeacherScore != nil {
		return *r.TeacherScore
	}
	if r.AIScore != nil {
		return *r.AIScore
	}
	return 0
}

// HintInput assembles the hint synthesis input for this response.
func (r QuestionResponse) HintInput() grading.HintData {
	return grading.HintData{
		QuestionType:    r.Type,
		StudentAnswer:   r.StudentAnswer,
		ModelAnswer:     r.ModelAnswer,
		AIFeedback:      r.AIFeedback,
		MatchedKeywords: r.MatchedKeywords,
		RubricKeywords:  r.RubricKeywords,
		LinkedLesson:    r.LinkedLesson,
	}
}
