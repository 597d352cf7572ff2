package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/classpulse/grading-gateway/internal/grading"
	"github.com/classpulse/grading-gateway/internal/models"
)

var (
	graderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pulse",
		Subsystem: "grader",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests to the upstream grading service",
	}, []string{"operation"})

	graderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "grader",
		Name:      "request_failures_total",
		Help:      "Number of failed requests to the upstream grading service",
	}, []string{"operation"})
)

// ErrNotFound indicates the upstream service has no such record.
var ErrNotFound = errors.New("grading service record not found")

// ErrUpstream indicates the upstream grading service failed or returned an
// unusable payload. Callers surface it as a retryable service failure.
var ErrUpstream = errors.New("grading service unavailable")

// ResponseOverrideRequest is the per-question override body. Scores use the
// 0-1 question scale. Feedback is only sent when the teacher supplied one.
type ResponseOverrideRequest struct {
	TeacherScore    grading.Fraction `json:"teacher_score"`
	TeacherFeedback *string          `json:"teacher_feedback,omitempty"`
}

// SubmissionOverrideRequest is the whole-submission override body. Scores
// use the 0-100 submission scale.
type SubmissionOverrideRequest struct {
	TeacherScore grading.Percent `json:"teacher_score"`
}

// API is the surface of the upstream grading service this gateway consumes.
type API interface {
	GetSubmission(ctx context.Context, id int64) (models.Submission, error)
	OverrideResponse(ctx context.Context, responseID int64, payload ResponseOverrideRequest) (models.QuestionResponse, error)
	OverrideSubmission(ctx context.Context, submissionID int64, payload SubmissionOverrideRequest) (models.Submission, error)
	ListRecommendations(ctx context.Context, classID int64) ([]models.RecommendedLesson, error)
	ListMisconceptions(ctx context.Context, classID int64, period string) ([]models.MisconceptionCluster, error)
}

// Config defines construction options for the upstream client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to the external grading service over HTTP with a bearer
// credential. It validates response payloads against JSON Schemas before
// decoding so malformed upstream data never leaks into the core.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// New builds an upstream client from the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("grader base url is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("grader bearer token is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		tracer:  otel.Tracer("github.com/classpulse/grading-gateway/internal/grader"),
		logger:  cfg.Logger.With().Str("component", "grader_client").Logger(),
	}, nil
}

// GetSubmission fetches a submission with its nested responses.
func (c *Client) GetSubmission(ctx context.Context, id int64) (models.Submission, error) {
	var submission models.Submission
	path := fmt.Sprintf("/submissions/%d", id)
	err := c.do(ctx, "get_submission", http.MethodGet, path, nil, submissionSchema, &submission)
	return submission, err
}

// OverrideResponse commits a teacher override for a single response.
func (c *Client) OverrideResponse(ctx context.Context, responseID int64, payload ResponseOverrideRequest) (models.QuestionResponse, error) {
	var response models.QuestionResponse
	path := fmt.Sprintf("/responses/%d/override", responseID)
	err := c.do(ctx, "override_response", http.MethodPost, path, payload, responseSchema, &response)
	return response, err
}

// OverrideSubmission commits a teacher override for a whole submission.
func (c *Client) OverrideSubmission(ctx context.Context, submissionID int64, payload SubmissionOverrideRequest) (models.Submission, error) {
	var submission models.Submission
	path := fmt.Sprintf("/submissions/%d/override", submissionID)
	err := c.do(ctx, "override_submission", http.MethodPost, path, payload, submissionSchema, &submission)
	return submission, err
}

// ListRecommendations fetches recommended lessons for a class.
func (c *Client) ListRecommendations(ctx context.Context, classID int64) ([]models.RecommendedLesson, error) {
	var lessons []models.RecommendedLesson
	path := "/recommendations?" + url.Values{"class_id": {fmt.Sprint(classID)}}.Encode()
	err := c.do(ctx, "list_recommendations", http.MethodGet, path, nil, recommendationsSchema, &lessons)
	return lessons, err
}

// ListMisconceptions fetches misconception clusters for a class and period.
func (c *Client) ListMisconceptions(ctx context.Context, classID int64, period string) ([]models.MisconceptionCluster, error) {
	var clusters []models.MisconceptionCluster
	query := url.Values{"class_id": {fmt.Sprint(classID)}, "period": {period}}
	err := c.do(ctx, "list_misconceptions", http.MethodGet, "/misconceptions?"+query.Encode(), nil, misconceptionsSchema, &clusters)
	return clusters, err
}

func (c *Client) do(parent context.Context, operation, method, path string, body interface{}, schema *jsonschema.Schema, out interface{}) error {
	ctx, span := c.tracer.Start(parent, "grader."+operation, trace.WithAttributes(
		attribute.String("grader.operation", operation),
	))
	defer span.End()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	request.Header.Set("Authorization", "Bearer "+c.token)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	response, err := c.http.Do(request)
	graderDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		graderFailures.WithLabelValues(operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %s: %v", ErrUpstream, operation, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		graderFailures.WithLabelValues(operation).Inc()
		span.RecordError(err)
		return fmt.Errorf("%w: read %s response: %v", ErrUpstream, operation, err)
	}

	switch {
	case response.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case response.StatusCode >= http.StatusBadRequest:
		graderFailures.WithLabelValues(operation).Inc()
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", response.StatusCode))
		c.logger.Warn().Int("status", response.StatusCode).Str("operation", operation).Msg("upstream request rejected")
		return fmt.Errorf("%w: %s returned status %d", ErrUpstream, operation, response.StatusCode)
	}

	if schema != nil {
		var decoded interface{}
		if err := json.Unmarshal(payload, &decoded); err != nil {
			graderFailures.WithLabelValues(operation).Inc()
			return fmt.Errorf("%w: decode %s response: %v", ErrUpstream, operation, err)
		}
		if err := schema.Validate(decoded); err != nil {
			graderFailures.WithLabelValues(operation).Inc()
			span.RecordError(err)
			c.logger.Warn().Err(err).Str("operation", operation).Msg("upstream payload failed schema validation")
			return fmt.Errorf("%w: %s payload failed validation: %v", ErrUpstream, operation, err)
		}
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			graderFailures.WithLabelValues(operation).Inc()
			return fmt.Errorf("%w: decode %s response: %v", ErrUpstream, operation, err)
		}
	}

	return nil
}
