package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/grading-gateway/internal/config"
	"github.com/classpulse/grading-gateway/internal/dto"
	"github.com/classpulse/grading-gateway/internal/grading"
	"github.com/classpulse/grading-gateway/internal/handler"
	"github.com/classpulse/grading-gateway/internal/router"
	"github.com/classpulse/grading-gateway/internal/service"
)

type fakeGradebookService struct {
	view dto.SubmissionView
	err  error
}

func (f *fakeGradebookService) GetSubmissionView(context.Context, int64) (dto.SubmissionView, error) {
	return f.view, f.err
}

func (f *fakeGradebookService) InvalidateSubmission(context.Context, int64) {}

type fakeOverrideService struct {
	results        []dto.QuestionOverrideResult
	questionsErr   error
	view           dto.SubmissionView
	submissionErr  error
	lastBatch      dto.QuestionOverrideBatch
	lastSubmission dto.SubmissionOverride
	lastActor      service.OverrideActor
}

func (f *fakeOverrideService) OverrideQuestions(_ context.Context, _ int64, payload dto.QuestionOverrideBatch, actor service.OverrideActor) ([]dto.QuestionOverrideResult, error) {
	f.lastBatch = payload
	f.lastActor = actor
	return f.results, f.questionsErr
}

func (f *fakeOverrideService) OverrideSubmission(_ context.Context, _ int64, payload dto.SubmissionOverride, actor service.OverrideActor) (dto.SubmissionView, error) {
	f.lastSubmission = payload
	f.lastActor = actor
	return f.view, f.submissionErr
}

func setupGradebookApp(t *testing.T, views service.GradebookService, overrides service.OverrideService, role string) *fiber.App {
	t.Helper()

	logger := zerolog.New(io.Discard)
	app := fiber.New()

	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		GradebookHandler: handler.NewGradebookHandler(views, overrides, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(10))
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app
}

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sampleValidationError(t *testing.T) error {
	t.Helper()

	err := validator.New(validator.WithRequiredStructEnabled()).Struct(dto.QuestionOverrideBatch{})
	require.Error(t, err)
	return err
}

func TestGetSubmissionReturnsDerivedView(t *testing.T) {
	badge := grading.ScoreBadge{Percentage: "72%", Band: grading.BandYellow, Message: "Good"}
	views := &fakeGradebookService{view: dto.SubmissionView{
		ID:          42,
		Status:      grading.StatusAwaitingOverride,
		StatusLabel: "Awaiting Review",
		Badge:       &badge,
	}}
	app := setupGradebookApp(t, views, &fakeOverrideService{}, "teacher")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/gradebook/submissions/42", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool               `json:"success"`
		Data    dto.SubmissionView `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, int64(42), payload.Data.ID)
	require.Equal(t, grading.StatusAwaitingOverride, payload.Data.Status)
	require.Equal(t, "72%", payload.Data.Badge.Percentage)
}

func TestGetSubmissionNotFound(t *testing.T) {
	views := &fakeGradebookService{err: service.ErrSubmissionNotFound}
	app := setupGradebookApp(t, views, &fakeOverrideService{}, "teacher")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/gradebook/submissions/999", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetSubmissionInvalidID(t *testing.T) {
	app := setupGradebookApp(t, &fakeGradebookService{}, &fakeOverrideService{}, "teacher")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/gradebook/submissions/abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGradebookForbiddenForStudents(t *testing.T) {
	app := setupGradebookApp(t, &fakeGradebookService{}, &fakeOverrideService{}, "student")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/gradebook/submissions/42", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestOverrideQuestionsSuccess(t *testing.T) {
	overrides := &fakeOverrideService{results: []dto.QuestionOverrideResult{
		{ResponseID: 1, Succeeded: true, CommittedScore: 0.9},
	}}
	app := setupGradebookApp(t, &fakeGradebookService{}, overrides, "teacher")

	req := jsonRequest(t, http.MethodPost, "/api/v2/gradebook/submissions/42/responses/override", dto.QuestionOverrideBatch{
		Overrides: []dto.QuestionOverride{{ResponseID: 1, TeacherScore: 0.9}},
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                         `json:"success"`
		Data    []dto.QuestionOverrideResult `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Len(t, payload.Data, 1)
	require.True(t, payload.Data[0].Succeeded)

	require.Equal(t, "10", overrides.lastActor.ID)
	require.Equal(t, "teacher", overrides.lastActor.Role)
}

func TestOverrideQuestionsPartialFailureReportsOutcomes(t *testing.T) {
	results := []dto.QuestionOverrideResult{
		{ResponseID: 1, Succeeded: true, CommittedScore: 0.8},
		{ResponseID: 2, Succeeded: false, Error: "grading service unavailable"},
	}
	overrides := &fakeOverrideService{
		results:      results,
		questionsErr: &service.PartialOverrideError{Results: results},
	}
	app := setupGradebookApp(t, &fakeGradebookService{}, overrides, "teacher")

	req := jsonRequest(t, http.MethodPost, "/api/v2/gradebook/submissions/42/responses/override", dto.QuestionOverrideBatch{
		Overrides: []dto.QuestionOverride{
			{ResponseID: 1, TeacherScore: 0.8},
			{ResponseID: 2, TeacherScore: 0.5},
		},
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusMultiStatus, resp.StatusCode)

	var payload struct {
		Success bool                         `json:"success"`
		Message string                       `json:"message"`
		Details []dto.QuestionOverrideResult `json:"details"`
	}
	decodeResponse(t, resp, &payload)
	require.False(t, payload.Success)
	require.Len(t, payload.Details, 2)
	require.True(t, payload.Details[0].Succeeded)
	require.False(t, payload.Details[1].Succeeded)
}

func TestOverrideQuestionsValidationError(t *testing.T) {
	overrides := &fakeOverrideService{questionsErr: sampleValidationError(t)}
	app := setupGradebookApp(t, &fakeGradebookService{}, overrides, "teacher")

	req := jsonRequest(t, http.MethodPost, "/api/v2/gradebook/submissions/42/responses/override", dto.QuestionOverrideBatch{})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOverrideQuestionsTotalFailure(t *testing.T) {
	overrides := &fakeOverrideService{questionsErr: service.ErrOverrideFailed}
	app := setupGradebookApp(t, &fakeGradebookService{}, overrides, "teacher")

	req := jsonRequest(t, http.MethodPost, "/api/v2/gradebook/submissions/42/responses/override", dto.QuestionOverrideBatch{
		Overrides: []dto.QuestionOverride{{ResponseID: 1, TeacherScore: 0.8}},
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestOverrideSubmissionSuccess(t *testing.T) {
	badge := grading.ScoreBadge{Percentage: "90%", Band: grading.BandGreen, Message: "Excellent"}
	overrides := &fakeOverrideService{view: dto.SubmissionView{
		ID:     42,
		Status: grading.StatusOverridden,
		Badge:  &badge,
	}}
	app := setupGradebookApp(t, &fakeGradebookService{}, overrides, "teacher")

	req := jsonRequest(t, http.MethodPost, "/api/v2/gradebook/submissions/42/override", dto.SubmissionOverride{TeacherScore: 90})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.SubmissionView `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, grading.StatusOverridden, payload.Data.Status)
	require.Equal(t, "90%", payload.Data.Badge.Percentage)
	require.Equal(t, 90.0, overrides.lastSubmission.TeacherScore)
}

func TestOverrideSubmissionNotFound(t *testing.T) {
	overrides := &fakeOverrideService{submissionErr: service.ErrSubmissionNotFound}
	app := setupGradebookApp(t, &fakeGradebookService{}, overrides, "teacher")

	req := jsonRequest(t, http.MethodPost, "/api/v2/gradebook/submissions/999/override", dto.SubmissionOverride{TeacherScore: 90})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestOverrideSubmissionUpstreamFailure(t *testing.T) {
	overrides := &fakeOverrideService{submissionErr: service.ErrOverrideFailed}
	app := setupGradebookApp(t, &fakeGradebookService{}, overrides, "teacher")

	req := jsonRequest(t, http.MethodPost, "/api/v2/gradebook/submissions/42/override", dto.SubmissionOverride{TeacherScore: 90})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
