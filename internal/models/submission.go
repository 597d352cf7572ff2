package models

import (
	"time"

	"github.com/classpulse/grading-gateway/internal/grading"
)

// Submission is one student's attempt at one assignment, fetched from the
// upstream grading service. The submission-level scores use the 0-100
// scale; per-question scores inside Responses use 0-1.
type Submission struct {
	ID              int64             `json:"id"`
	AssignmentID    int64             `json:"assignment_id"`
	AssignmentTitle string            `json:"assignment_title"`
	StudentID       int64             `json:"student_id"`
	StudentName     string            `json:"student_name"`
	SubmittedAt     time.Time         `json:"submitted_at"`
	AIScore         *grading.Percent  `json:"ai_score"`
	AIExplanation   string            `json:"ai_explanation,omitempty"`
	TeacherScore    *grading.Percent  `json:"teacher_score"`
	Responses       []QuestionResponse `json:"responses"`
}

// EffectiveScore returns the authoritative submission score: the teacher
// override when present, otherwise the AI aggregate, otherwise nil. Once a
// teacher score is set the AI value is never authoritative again.
func (s Submission) EffectiveScore() *grading.Percent {
	if s.TeacherScore != nil {
		return s.TeacherScore
	}
	return s.AIScore
}

// Status derives the submission-level grading status. Teacher feedback
// lives on individual responses, so only the two scores participate here.
func (s Submission) Status() grading.Status {
	return grading.ResolveStatus(s.AIScore != nil, s.TeacherScore != nil, false)
}

// ResponseByID looks up a response within the submission.
func (s Submission) ResponseByID(id int64) (QuestionResponse, bool) {
	for _, response := range s.Responses {
		if response.ID == id {
			return response, true
		}
	}
	return QuestionResponse{}, false
}
