package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/classpulse/grading-gateway/internal/dto"
	"github.com/classpulse/grading-gateway/internal/grader"
	"github.com/classpulse/grading-gateway/internal/grading"
	"github.com/classpulse/grading-gateway/internal/notify"
)

// ErrOverrideFailed indicates no override in the action was committed.
// The action is retryable and nothing changed upstream.
var ErrOverrideFailed = errors.New("override commit failed")

// ErrPartialOverride indicates some but not all response overrides in a
// batch were committed. Surfaced distinctly from total failure because the
// gradebook must be re-checked rather than assumed unchanged.
var ErrPartialOverride = errors.New("some response overrides failed")

// PartialOverrideError carries the per-response outcomes of a batch whose
// commits partially succeeded.
type PartialOverrideError struct {
	Results []dto.QuestionOverrideResult
}

func (e *PartialOverrideError) Error() string {
	failed := 0
	for _, result := range e.Results {
		if !result.Succeeded {
			failed++
		}
	}
	return fmt.Sprintf("%d of %d response overrides failed", failed, len(e.Results))
}

func (e *PartialOverrideError) Unwrap() error { return ErrPartialOverride }

// OverrideActor identifies the teacher committing an override.
type OverrideActor struct {
	ID   string
	Role string
}

// OverrideService is the reconciler for teacher-entered scores. The two
// commit paths (per-question batch, whole submission) use different score
// scales and are never mixed in one action.
type OverrideService interface {
	OverrideQuestions(ctx context.Context, submissionID int64, payload dto.QuestionOverrideBatch, actor OverrideActor) ([]dto.QuestionOverrideResult, error)
	OverrideSubmission(ctx context.Context, submissionID int64, payload dto.SubmissionOverride, actor OverrideActor) (dto.SubmissionView, error)
}

type overrideService struct {
	grader    grader.API
	views     GradebookService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	events    notify.Publisher
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewOverrideService constructs the reconciler. events may be a notify.Noop
// in headless deployments.
func NewOverrideService(graderAPI grader.API, views GradebookService, validate *validator.Validate, events notify.Publisher, logger zerolog.Logger) OverrideService {
	if events == nil {
		events = notify.Noop{}
	}
	return &overrideService{
		grader:    graderAPI,
		views:     views,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		events:    events,
		logger:    logger.With().Str("component", "override_service").Logger(),
		tracer:    otel.Tracer("github.com/classpulse/grading-gateway/internal/service/override"),
	}
}

// OverrideQuestions commits a batch of per-question overrides, one upstream
// call per response, concurrently. It waits for the whole batch before
// reporting. Scores are clamped into [0,1] and feedback is sanitized before
// commit. On any committed write the cached view is invalidated and an
// event is published; cached view state is never patched in place.
func (s *overrideService) OverrideQuestions(ctx context.Context, submissionID int64, payload dto.QuestionOverrideBatch, actor OverrideActor) ([]dto.QuestionOverrideResult, error) {
	ctx, span := s.tracer.Start(ctx, "override.questions", trace.WithAttributes(
		attribute.Int64("override.submission_id", submissionID),
		attribute.Int("override.batch_size", len(payload.Overrides)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return nil, err
	}

	results := make([]dto.QuestionOverrideResult, len(payload.Overrides))
	var wg sync.WaitGroup

	for i, override := range payload.Overrides {
		clamped := grading.Fraction(override.TeacherScore).Clamp()
		feedback := strings.TrimSpace(s.sanitizer.Sanitize(override.TeacherFeedback))

		request := grader.ResponseOverrideRequest{TeacherScore: clamped}
		if feedback != "" {
			request.TeacherFeedback = &feedback
		}

		wg.Add(1)
		go func(index int, responseID int64, request grader.ResponseOverrideRequest) {
			defer wg.Done()

			result := dto.QuestionOverrideResult{
				ResponseID:     responseID,
				CommittedScore: float64(request.TeacherScore),
			}
			if _, err := s.grader.OverrideResponse(ctx, responseID, request); err != nil {
				result.Succeeded = false
				result.CommittedScore = 0
				result.Error = overrideFailureMessage(err)
				s.logger.Warn().Err(err).Int64("response_id", responseID).Msg("response override failed")
			} else {
				result.Succeeded = true
			}
			results[index] = result
		}(i, override.ResponseID, request)
	}

	wg.Wait()

	succeeded := 0
	for _, result := range results {
		if result.Succeeded {
			succeeded++
		}
	}
	span.SetAttributes(attribute.Int("override.succeeded", succeeded))

	if succeeded > 0 {
		s.views.InvalidateSubmission(ctx, submissionID)

		responseIDs := make([]int64, 0, succeeded)
		for _, result := range results {
			if result.Succeeded {
				responseIDs = append(responseIDs, result.ResponseID)
			}
		}
		s.events.Publish(ctx, notify.Event{
			Type:         notify.EventQuestionOverride,
			SubmissionID: submissionID,
			ResponseIDs:  responseIDs,
			TeacherID:    actor.ID,
		})
	}

	switch {
	case succeeded == len(results):
		return results, nil
	case succeeded == 0:
		span.SetStatus(codes.Error, "override_failed")
		return results, fmt.Errorf("%w: no response override was committed", ErrOverrideFailed)
	default:
		span.SetStatus(codes.Error, "override_partial")
		return results, &PartialOverrideError{Results: results}
	}
}

// OverrideSubmission commits a whole-submission override on the 0-100
// scale. Committing the same value twice is idempotent: the second call
// skips the upstream write and yields the same view.
func (s *overrideService) OverrideSubmission(ctx context.Context, submissionID int64, payload dto.SubmissionOverride, actor OverrideActor) (dto.SubmissionView, error) {
	ctx, span := s.tracer.Start(ctx, "override.submission", trace.WithAttributes(
		attribute.Int64("override.submission_id", submissionID),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionView{}, err
	}

	clamped := grading.Percent(payload.TeacherScore).Clamp()
	span.SetAttributes(attribute.Float64("override.teacher_score", float64(clamped)))

	current, err := s.grader.GetSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, grader.ErrNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionView{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionView{}, fmt.Errorf("%w: %v", ErrOverrideFailed, err)
	}

	if current.TeacherScore != nil && math.Abs(float64(*current.TeacherScore)-float64(clamped)) < 1e-6 {
		span.SetAttributes(attribute.Bool("override.idempotent", true))
		return s.views.GetSubmissionView(ctx, submissionID)
	}

	if _, err := s.grader.OverrideSubmission(ctx, submissionID, grader.SubmissionOverrideRequest{TeacherScore: clamped}); err != nil {
		if errors.Is(err, grader.ErrNotFound) {
			return dto.SubmissionView{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "override_failed")
		return dto.SubmissionView{}, fmt.Errorf("%w: %v", ErrOverrideFailed, err)
	}

	s.views.InvalidateSubmission(ctx, submissionID)
	s.events.Publish(ctx, notify.Event{
		Type:         notify.EventSubmissionOverride,
		SubmissionID: submissionID,
		TeacherID:    actor.ID,
	})

	return s.views.GetSubmissionView(ctx, submissionID)
}

func overrideFailureMessage(err error) string {
	if errors.Is(err, grader.ErrNotFound) {
		return "response not found"
	}
	return "grading service unavailable"
}
