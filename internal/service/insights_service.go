package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classpulse/grading-gateway/internal/dto"
	"github.com/classpulse/grading-gateway/internal/grader"
)

// ErrInvalidPeriod indicates a misconception period outside week|month.
var ErrInvalidPeriod = errors.New("period must be week or month")

// Misconception reporting periods accepted by the upstream service.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// InsightsService relays read-only recommendation and misconception
// signals from the upstream service. The clusters themselves are computed
// upstream; this service never recomputes them.
type InsightsService interface {
	Recommendations(ctx context.Context, classID int64) (dto.RecommendationsView, error)
	Misconceptions(ctx context.Context, classID int64, period string) (dto.MisconceptionsView, error)
}

type insightsService struct {
	grader   grader.API
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewInsightsService constructs the insights passthrough service.
func NewInsightsService(graderAPI grader.API, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) InsightsService {
	return &insightsService{
		grader:   graderAPI,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "insights_service").Logger(),
	}
}

func (s *insightsService) Recommendations(ctx context.Context, classID int64) (dto.RecommendationsView, error) {
	cacheKey := fmt.Sprintf("insights:recommendations:%d", classID)

	var view dto.RecommendationsView
	if s.readCache(ctx, cacheKey, &view) {
		return view, nil
	}

	lessons, err := s.grader.ListRecommendations(ctx, classID)
	if err != nil {
		return dto.RecommendationsView{}, err
	}

	view = dto.RecommendationsView{ClassID: classID, Lessons: lessons}
	s.writeCache(ctx, cacheKey, view)
	return view, nil
}

func (s *insightsService) Misconceptions(ctx context.Context, classID int64, period string) (dto.MisconceptionsView, error) {
	if period == "" {
		period = PeriodWeek
	}
	if period != PeriodWeek && period != PeriodMonth {
		return dto.MisconceptionsView{}, ErrInvalidPeriod
	}

	cacheKey := fmt.Sprintf("insights:misconceptions:%d:%s", classID, period)

	var view dto.MisconceptionsView
	if s.readCache(ctx, cacheKey, &view) {
		return view, nil
	}

	clusters, err := s.grader.ListMisconceptions(ctx, classID, period)
	if err != nil {
		return dto.MisconceptionsView{}, err
	}

	view = dto.MisconceptionsView{ClassID: classID, Period: period, Clusters: clusters}
	s.writeCache(ctx, cacheKey, view)
	return view, nil
}

func (s *insightsService) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read insights cache")
		}
		return false
	}
	return json.Unmarshal([]byte(cached), out) == nil
}

func (s *insightsService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store insights cache")
	}
}
