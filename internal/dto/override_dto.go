package dto

// QuestionOverride is one teacher-entered per-question override. Scores use
// the 0-1 question scale and are clamped, never rejected, before commit.
type QuestionOverride struct {
	ResponseID      int64   `json:"response_id" validate:"required,gt=0"`
	TeacherScore    float64 `json:"teacher_score"`
	TeacherFeedback string  `json:"teacher_feedback" validate:"omitempty,max=4000"`
}

// QuestionOverrideBatch is the per-question override commit payload.
type QuestionOverrideBatch struct {
	Overrides []QuestionOverride `json:"overrides" validate:"required,min=1,dive"`
}

// SubmissionOverride is the whole-submission override payload. Scores use
// the 0-100 submission scale; the two scales are never interchangeable.
type SubmissionOverride struct {
	TeacherScore float64 `json:"teacher_score"`
}

// QuestionOverrideResult reports the outcome for one response in a batch.
type QuestionOverrideResult struct {
	ResponseID     int64   `json:"response_id"`
	Succeeded      bool    `json:"succeeded"`
	CommittedScore float64 `json:"committed_score,omitempty"`
	Error          string  `json:"error,omitempty"`
}
