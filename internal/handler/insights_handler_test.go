package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/grading-gateway/internal/config"
	"github.com/classpulse/grading-gateway/internal/dto"
	"github.com/classpulse/grading-gateway/internal/handler"
	"github.com/classpulse/grading-gateway/internal/models"
	"github.com/classpulse/grading-gateway/internal/router"
	"github.com/classpulse/grading-gateway/internal/service"
)

type fakeInsightsService struct {
	recommendations dto.RecommendationsView
	misconceptions  dto.MisconceptionsView
	err             error
	lastPeriod      string
}

func (f *fakeInsightsService) Recommendations(context.Context, int64) (dto.RecommendationsView, error) {
	return f.recommendations, f.err
}

func (f *fakeInsightsService) Misconceptions(_ context.Context, _ int64, period string) (dto.MisconceptionsView, error) {
	f.lastPeriod = period
	if f.err != nil {
		return dto.MisconceptionsView{}, f.err
	}
	return f.misconceptions, nil
}

func setupInsightsApp(t *testing.T, insights service.InsightsService) *fiber.App {
	t.Helper()

	logger := zerolog.New(io.Discard)
	app := fiber.New()

	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		InsightsHandler: handler.NewInsightsHandler(insights, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(10))
			c.Locals("user_role", "teacher")
			return c.Next()
		},
	})

	return app
}

func TestRecommendationsRequiresClassID(t *testing.T) {
	app := setupInsightsApp(t, &fakeInsightsService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/insights/recommendations", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRecommendationsReturnsLessons(t *testing.T) {
	insights := &fakeInsightsService{recommendations: dto.RecommendationsView{
		ClassID: 12,
		Lessons: []models.RecommendedLesson{{LessonID: 7, Title: "Limits and Continuity"}},
	}}
	app := setupInsightsApp(t, insights)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/insights/recommendations?class_id=12", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                    `json:"success"`
		Data    dto.RecommendationsView `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, int64(12), payload.Data.ClassID)
	require.Len(t, payload.Data.Lessons, 1)
}

func TestMisconceptionsPassesPeriodThrough(t *testing.T) {
	insights := &fakeInsightsService{misconceptions: dto.MisconceptionsView{
		ClassID: 12,
		Period:  service.PeriodMonth,
		Clusters: []models.MisconceptionCluster{
			{Label: "confuses limit with derivative", Count: 4},
		},
	}}
	app := setupInsightsApp(t, insights)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/insights/misconceptions?class_id=12&period=month", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, service.PeriodMonth, insights.lastPeriod)

	var payload struct {
		Data dto.MisconceptionsView `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Len(t, payload.Data.Clusters, 1)
}

func TestMisconceptionsInvalidPeriod(t *testing.T) {
	insights := &fakeInsightsService{err: service.ErrInvalidPeriod}
	app := setupInsightsApp(t, insights)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/insights/misconceptions?class_id=12&period=quarter", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
