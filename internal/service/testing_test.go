package service

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classpulse/grading-gateway/internal/grader"
	"github.com/classpulse/grading-gateway/internal/models"
	"github.com/classpulse/grading-gateway/internal/notify"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

type fakeGraderAPI struct {
	mu sync.Mutex

	submission    models.Submission
	submissionErr error

	getCalls            int
	responseOverrides   map[int64]grader.ResponseOverrideRequest
	responseOverrideErr map[int64]error
	submissionOverrides []grader.SubmissionOverrideRequest

	recommendations []models.RecommendedLesson
	misconceptions  []models.MisconceptionCluster
	insightCalls    int
	lastPeriod      string
}

func newFakeGraderAPI(submission models.Submission) *fakeGraderAPI {
	return &fakeGraderAPI{
		submission:          submission,
		responseOverrides:   make(map[int64]grader.ResponseOverrideRequest),
		responseOverrideErr: make(map[int64]error),
	}
}

func (f *fakeGraderAPI) GetSubmission(ctx context.Context, id int64) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls++
	if f.submissionErr != nil {
		return models.Submission{}, f.submissionErr
	}
	if id != f.submission.ID {
		return models.Submission{}, grader.ErrNotFound
	}
	return f.submission, nil
}

func (f *fakeGraderAPI) OverrideResponse(ctx context.Context, responseID int64, payload grader.ResponseOverrideRequest) (models.QuestionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.responseOverrideErr[responseID]; err != nil {
		return models.QuestionResponse{}, err
	}

	f.responseOverrides[responseID] = payload
	for i := range f.submission.Responses {
		if f.submission.Responses[i].ID == responseID {
			score := payload.TeacherScore
			f.submission.Responses[i].TeacherScore = &score
			if payload.TeacherFeedback != nil {
				f.submission.Responses[i].TeacherFeedback = *payload.TeacherFeedback
			}
			return f.submission.Responses[i], nil
		}
	}
	return models.QuestionResponse{}, grader.ErrNotFound
}

func (f *fakeGraderAPI) OverrideSubmission(ctx context.Context, submissionID int64, payload grader.SubmissionOverrideRequest) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if submissionID != f.submission.ID {
		return models.Submission{}, grader.ErrNotFound
	}

	f.submissionOverrides = append(f.submissionOverrides, payload)
	score := payload.TeacherScore
	f.submission.TeacherScore = &score
	return f.submission, nil
}

func (f *fakeGraderAPI) ListRecommendations(ctx context.Context, classID int64) ([]models.RecommendedLesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.insightCalls++
	return f.recommendations, nil
}

func (f *fakeGraderAPI) ListMisconceptions(ctx context.Context, classID int64, period string) ([]models.MisconceptionCluster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.insightCalls++
	f.lastPeriod = period
	return f.misconceptions, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *capturingPublisher) Publish(_ context.Context, event notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturingPublisher) all() []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Event(nil), p.events...)
}
