package models

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classpulse/grading-gateway/internal/grading"
)

func fraction(v float64) *grading.Fraction {
	f := grading.Fraction(v)
	return &f
}

func percent(v float64) *grading.Percent {
	p := grading.Percent(v)
	return &p
}

func TestQuestionResponseEffectiveScorePrecedence(t *testing.T) {
	response := QuestionResponse{AIScore: fraction(0.45), TeacherScore: fraction(0.9)}
	require.Equal(t, grading.Fraction(0.9), *response.EffectiveScore())

	response.TeacherScore = nil
	require.Equal(t, grading.Fraction(0.45), *response.EffectiveScore())

	response.AIScore = nil
	require.Nil(t, response.EffectiveScore())
}

func TestQuestionResponseSeedScore(t *testing.T) {
	response := QuestionResponse{}
	require.Equal(t, grading.Fraction(0), response.SeedScore())

	response.AIScore = fraction(0.72)
	require.Equal(t, grading.Fraction(0.72), response.SeedScore())

	response.TeacherScore = fraction(0.5)
	require.Equal(t, grading.Fraction(0.5), response.SeedScore())
}

func TestQuestionResponseStatus(t *testing.T) {
	response := QuestionResponse{Type: QuestionTypeShort}
	require.Equal(t, grading.StatusPending, response.Status())

	response.AIScore = fraction(0.72)
	require.Equal(t, grading.StatusAwaitingOverride, response.Status())

	response.TeacherFeedback = "Nice revision"
	require.Equal(t, grading.StatusOverridden, response.Status())
}

func TestSubmissionEffectiveScoreAndStatus(t *testing.T) {
	submission := Submission{}
	require.Nil(t, submission.EffectiveScore())
	require.Equal(t, grading.StatusPending, submission.Status())

	submission.AIScore = percent(72)
	require.Equal(t, grading.Percent(72), *submission.EffectiveScore())
	require.Equal(t, grading.StatusAwaitingOverride, submission.Status())

	submission.TeacherScore = percent(90)
	require.Equal(t, grading.Percent(90), *submission.EffectiveScore())
	require.Equal(t, grading.StatusOverridden, submission.Status())
}

func TestSubmissionResponseByID(t *testing.T) {
	submission := Submission{Responses: []QuestionResponse{{ID: 1}, {ID: 2}}}

	response, ok := submission.ResponseByID(2)
	require.True(t, ok)
	require.Equal(t, int64(2), response.ID)

	_, ok = submission.ResponseByID(99)
	require.False(t, ok)
}
