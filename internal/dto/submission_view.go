package dto

import (
	"time"

	"github.com/classpulse/grading-gateway/internal/grading"
	"github.com/classpulse/grading-gateway/internal/models"
)

// ResponseView is the per-question derived view model served to the UI.
type ResponseView struct {
	ID              int64               `json:"id"`
	QuestionID      int64               `json:"question_id"`
	Type            string              `json:"type"`
	Prompt          string              `json:"prompt,omitempty"`
	StudentAnswer   string              `json:"student_answer"`
	Status          grading.Status      `json:"status"`
	StatusLabel     string              `json:"status_label"`
	Badge           *grading.ScoreBadge `json:"badge,omitempty"`
	Confidence      string              `json:"confidence,omitempty"`
	AIScore         *grading.Fraction   `json:"ai_score"`
	AIFeedback      string              `json:"ai_feedback,omitempty"`
	TeacherScore    *grading.Fraction   `json:"teacher_score"`
	TeacherFeedback string              `json:"teacher_feedback,omitempty"`
	IsMCQCorrect    *bool               `json:"is_mcq_correct,omitempty"`
	Hint            *grading.Hint       `json:"hint,omitempty"`
	OverrideSeed    grading.Fraction    `json:"override_seed"`
}

// SubmissionView is the submission-level derived view model, recomputed on
// every read from fresh upstream data.
type SubmissionView struct {
	ID              int64               `json:"id"`
	AssignmentID    int64               `json:"assignment_id"`
	AssignmentTitle string              `json:"assignment_title,omitempty"`
	StudentID       int64               `json:"student_id"`
	StudentName     string              `json:"student_name,omitempty"`
	SubmittedAt     time.Time           `json:"submitted_at"`
	Status          grading.Status      `json:"status"`
	StatusLabel     string              `json:"status_label"`
	Badge           *grading.ScoreBadge `json:"badge,omitempty"`
	AIScore         *grading.Percent    `json:"ai_score"`
	AIExplanation   string              `json:"ai_explanation,omitempty"`
	TeacherScore    *grading.Percent    `json:"teacher_score"`
	Responses       []ResponseView      `json:"responses"`
}

// NewSubmissionView derives the full display model for a submission.
// hintLimit caps the number of suggestions per hint.
func NewSubmissionView(submission models.Submission, hintLimit int) SubmissionView {
	status := submission.Status()
	view := SubmissionView{
		ID:              submission.ID,
		AssignmentID:    submission.AssignmentID,
		AssignmentTitle: submission.AssignmentTitle,
		StudentID:       submission.StudentID,
		StudentName:     submission.StudentName,
		SubmittedAt:     submission.SubmittedAt,
		Status:          status,
		StatusLabel:     status.BadgeLabel(false),
		AIScore:         submission.AIScore,
		AIExplanation:   submission.AIExplanation,
		TeacherScore:    submission.TeacherScore,
		Responses:       make([]ResponseView, 0, len(submission.Responses)),
	}

	if effective := submission.EffectiveScore(); effective != nil {
		badge := grading.NormalizePercent(*effective)
		view.Badge = &badge
	}

	for _, response := range submission.Responses {
		view.Responses = append(view.Responses, newResponseView(response, hintLimit))
	}

	return view
}

func newResponseView(response models.QuestionResponse, hintLimit int) ResponseView {
	status := response.Status()
	view := ResponseView{
		ID:              response.ID,
		QuestionID:      response.QuestionID,
		Type:            response.Type,
		Prompt:          response.Prompt,
		StudentAnswer:   response.StudentAnswer,
		Status:          status,
		StatusLabel:     status.BadgeLabel(false),
		AIScore:         response.AIScore,
		AIFeedback:      response.AIFeedback,
		TeacherScore:    response.TeacherScore,
		TeacherFeedback: response.TeacherFeedback,
		IsMCQCorrect:    response.IsMCQCorrect,
		OverrideSeed:    response.SeedScore(),
	}

	if response.IsShortAnswer() {
		if effective := response.EffectiveScore(); effective != nil {
			badge := grading.NormalizeScore(*effective)
			view.Badge = &badge
			view.Confidence = grading.ConfidenceMessage(*effective)
		}
		view.Hint = grading.MakeHint(response.HintInput(), hintLimit)
	}

	return view
}
