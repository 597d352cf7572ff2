package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/classpulse/grading-gateway/internal/dto"
	"github.com/classpulse/grading-gateway/internal/grader"
)

// ErrSubmissionNotFound indicates the upstream service has no such submission.
var ErrSubmissionNotFound = errors.New("submission not found")

// GradebookService assembles derived submission views. Statuses, badges and
// hints are recomputed from upstream data on every cache miss; the cache
// only ever holds a fully derived view, never a partially mutated one.
type GradebookService interface {
	GetSubmissionView(ctx context.Context, submissionID int64) (dto.SubmissionView, error)
	InvalidateSubmission(ctx context.Context, submissionID int64)
}

type gradebookService struct {
	grader    grader.API
	cache     *redis.Client
	cacheTTL  time.Duration
	hintLimit int
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewGradebookService constructs the gradebook view service. cache may be
// nil, in which case every read goes upstream.
func NewGradebookService(graderAPI grader.API, cache *redis.Client, cacheTTL time.Duration, hintLimit int, logger zerolog.Logger) GradebookService {
	return &gradebookService{
		grader:    graderAPI,
		cache:     cache,
		cacheTTL:  cacheTTL,
		hintLimit: hintLimit,
		logger:    logger.With().Str("component", "gradebook_service").Logger(),
		tracer:    otel.Tracer("github.com/classpulse/grading-gateway/internal/service/gradebook"),
	}
}

func submissionCacheKey(submissionID int64) string {
	return fmt.Sprintf("gradebook:submission:%d", submissionID)
}

func (s *gradebookService) GetSubmissionView(ctx context.Context, submissionID int64) (dto.SubmissionView, error) {
	ctx, span := s.tracer.Start(ctx, "gradebook.view", trace.WithAttributes(
		attribute.Int64("gradebook.submission_id", submissionID),
	))
	defer span.End()

	cacheKey := submissionCacheKey(submissionID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var view dto.SubmissionView
			if unmarshalErr := json.Unmarshal([]byte(cached), &view); unmarshalErr == nil {
				s.logger.Debug().Int64("submission_id", submissionID).Msg("submission view cache hit")
				span.SetAttributes(attribute.Bool("gradebook.cache_hit", true))
				return view, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read submission view cache")
		}
	}

	submission, err := s.grader.GetSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, grader.ErrNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionView{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream_fetch_failed")
		return dto.SubmissionView{}, err
	}

	view := dto.NewSubmissionView(submission, s.hintLimit)

	if s.cache != nil {
		if payload, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store submission view cache")
			}
		}
	}

	return view, nil
}

// InvalidateSubmission drops the cached view so the next read recomputes
// from fresh upstream data.
func (s *gradebookService) InvalidateSubmission(ctx context.Context, submissionID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, submissionCacheKey(submissionID)).Err(); err != nil {
		s.logger.Warn().Err(err).Int64("submission_id", submissionID).Msg("failed to invalidate submission view cache")
	}
}
