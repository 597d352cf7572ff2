package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/classpulse/grading-gateway/internal/grader"
	"github.com/classpulse/grading-gateway/internal/service"
	"github.com/classpulse/grading-gateway/internal/utils"
)

// InsightsHandler wires class-level recommendation and misconception endpoints.
type InsightsHandler struct {
	service service.InsightsService
	logger  zerolog.Logger
}

// NewInsightsHandler constructs the handler.
func NewInsightsHandler(insights service.InsightsService, logger zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		service: insights,
		logger:  logger.With().Str("component", "insights_handler").Logger(),
	}
}

// Register attaches insight endpoints to the router group.
func (h *InsightsHandler) Register(router fiber.Router) {
	router.Get("/recommendations", h.recommendations)
	router.Get("/misconceptions", h.misconceptions)
}

func (h *InsightsHandler) recommendations(c *fiber.Ctx) error {
	classID, err := parseQueryID(c, "class_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.service.Recommendations(c.UserContext(), classID)
	if err != nil {
		if errors.Is(err, grader.ErrUpstream) {
			requestLogger(h.logger, c).Error().Err(err).Int64("class_id", classID).Msg("upstream grading service unavailable")
			return utils.SendError(c, fiber.StatusBadGateway, "grading service unavailable")
		}
		requestLogger(h.logger, c).Error().Err(err).Int64("class_id", classID).Msg("failed to load recommendations")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load recommendations")
	}

	return utils.SendSuccess(c, "recommended lessons", view)
}

func (h *InsightsHandler) misconceptions(c *fiber.Ctx) error {
	classID, err := parseQueryID(c, "class_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.service.Misconceptions(c.UserContext(), classID, c.Query("period"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPeriod):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, grader.ErrUpstream):
			requestLogger(h.logger, c).Error().Err(err).Int64("class_id", classID).Msg("upstream grading service unavailable")
			return utils.SendError(c, fiber.StatusBadGateway, "grading service unavailable")
		default:
			requestLogger(h.logger, c).Error().Err(err).Int64("class_id", classID).Msg("failed to load misconceptions")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to load misconceptions")
		}
	}

	return utils.SendSuccess(c, "misconception clusters", view)
}
