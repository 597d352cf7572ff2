package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/classpulse/grading-gateway/internal/dto"
	"github.com/classpulse/grading-gateway/internal/grader"
	"github.com/classpulse/grading-gateway/internal/service"
	"github.com/classpulse/grading-gateway/internal/utils"
)

// GradebookHandler wires submission view and override endpoints for teachers.
type GradebookHandler struct {
	views     service.GradebookService
	overrides service.OverrideService
	logger    zerolog.Logger
}

// NewGradebookHandler constructs the handler.
func NewGradebookHandler(views service.GradebookService, overrides service.OverrideService, logger zerolog.Logger) *GradebookHandler {
	return &GradebookHandler{
		views:     views,
		overrides: overrides,
		logger:    logger.With().Str("component", "gradebook_handler").Logger(),
	}
}

// Register attaches gradebook endpoints to the router group.
func (h *GradebookHandler) Register(router fiber.Router) {
	router.Get("/submissions/:id", h.getSubmission)
	router.Post("/submissions/:id/override", h.overrideSubmission)
	router.Post("/submissions/:id/responses/override", h.overrideQuestions)
}

func (h *GradebookHandler) getSubmission(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	view, err := h.views.GetSubmissionView(c.UserContext(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, grader.ErrUpstream):
			requestLogger(h.logger, c).Error().Err(err).Int64("submission_id", id).Msg("upstream grading service unavailable")
			return utils.SendError(c, fiber.StatusBadGateway, "grading service unavailable")
		default:
			requestLogger(h.logger, c).Error().Err(err).Int64("submission_id", id).Msg("failed to load submission view")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to load submission")
		}
	}

	return utils.SendSuccess(c, "submission view", view)
}

func (h *GradebookHandler) overrideSubmission(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.SubmissionOverride
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := overrideActorFromContext(c)
	view, err := h.overrides.OverrideSubmission(c.UserContext(), id, payload, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOverrideFailed):
			requestLogger(h.logger, c).Error().Err(err).Int64("submission_id", id).Msg("submission override failed")
			return utils.SendError(c, fiber.StatusBadGateway, "override could not be committed")
		default:
			requestLogger(h.logger, c).Error().Err(err).Int64("submission_id", id).Msg("failed to override submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to override submission")
		}
	}

	return utils.SendSuccess(c, "submission score overridden", view)
}

func (h *GradebookHandler) overrideQuestions(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.QuestionOverrideBatch
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := overrideActorFromContext(c)
	results, err := h.overrides.OverrideQuestions(c.UserContext(), id, payload, actor)
	if err != nil {
		var partial *service.PartialOverrideError
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.As(err, &partial):
			requestLogger(h.logger, c).Warn().Int64("submission_id", id).Msg(partial.Error())
			return utils.SendErrorWithDetails(c, fiber.StatusMultiStatus, "some response overrides failed", partial.Results)
		case errors.Is(err, service.ErrOverrideFailed):
			requestLogger(h.logger, c).Error().Err(err).Int64("submission_id", id).Msg("response override batch failed")
			return utils.SendErrorWithDetails(c, fiber.StatusBadGateway, "no response override was committed", results)
		default:
			requestLogger(h.logger, c).Error().Err(err).Int64("submission_id", id).Msg("failed to override responses")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to override responses")
		}
	}

	return utils.SendSuccess(c, "response scores overridden", results)
}
