package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/service"
	"github.com/nhatminh-dev/lavang-api/internal/utils"
)

// SchoolYearHandler exposes school year administration endpoints.
type SchoolYearHandler struct {
	service service.SchoolYearService
	logger  zerolog.Logger
}

// NewSchoolYearHandler constructs a school year handler.
func NewSchoolYearHandler(service service.SchoolYearService, logger zerolog.Logger) *SchoolYearHandler {
	return &SchoolYearHandler{
		service: service,
		logger:  logger.With().Str("component", "school_year_handler").Logger(),
	}
}

// Register wires school year routes.
func (h *SchoolYearHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/current", h.current)
	router.Get("/check-auto-create", h.checkAutoCreate)
	router.Get("/check-transition", h.checkTransition)
	router.Post("/transition", h.transition)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *SchoolYearHandler) list(c *fiber.Ctx) error {
	includeArchived := c.QueryBool("include_archived", false)

	years, err := h.service.List(c.Context(), includeArchived)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list school years")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list school years")
	}

	return utils.SendSuccess(c, "school years", years)
}

func (h *SchoolYearHandler) current(c *fiber.Ctx) error {
	year, err := h.service.ActiveOrLatestResponse(c.Context())
	if err != nil {
		if errors.Is(err, service.ErrSchoolYearNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "no school year found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load current school year")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load current school year")
	}

	return utils.SendSuccess(c, "current school year", year)
}

func (h *SchoolYearHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school year id")
	}

	year, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSchoolYearNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "school year not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load school year")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load school year")
	}

	return utils.SendSuccess(c, "school year", year)
}

func (h *SchoolYearHandler) create(c *fiber.Ctx) error {
	var payload dto.SchoolYearCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	year, err := h.service.Create(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid school year payload")
		case errors.Is(err, service.ErrSchoolYearDuplicate):
			return utils.SendError(c, fiber.StatusConflict, "school year already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create school year")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create school year")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "school year created", year)
}

func (h *SchoolYearHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school year id")
	}

	var payload dto.SchoolYearUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	year, err := h.service.Update(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid school year payload")
		case errors.Is(err, service.ErrSchoolYearNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "school year not found")
		case errors.Is(err, service.ErrSchoolYearDuplicate):
			return utils.SendError(c, fiber.StatusConflict, "school year already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update school year")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update school year")
		}
	}

	return utils.SendSuccess(c, "school year updated", year)
}

func (h *SchoolYearHandler) transition(c *fiber.Ctx) error {
	var payload dto.SchoolYearTransitionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Transition(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid transition payload")
		case errors.Is(err, service.ErrSchoolYearNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "school year not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("school year transition failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "school year transition failed")
		}
	}

	return utils.SendSuccess(c, "school year transitioned", result)
}

func (h *SchoolYearHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school year id")
	}

	if err := h.service.Delete(c.Context(), id, activityActorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrSchoolYearNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "school year not found")
		case errors.Is(err, service.ErrSchoolYearHasClass):
			return utils.SendError(c, fiber.StatusConflict, "school year still has classes")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete school year")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete school year")
		}
	}

	return utils.SendSuccess(c, "school year deleted", fiber.Map{"id": id})
}

func (h *SchoolYearHandler) checkAutoCreate(c *fiber.Ctx) error {
	check, err := h.service.CheckAutoCreate(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("auto-create check failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "auto-create check failed")
	}

	return utils.SendSuccess(c, "auto-create check", check)
}

func (h *SchoolYearHandler) checkTransition(c *fiber.Ctx) error {
	check, err := h.service.CheckTransition(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("transition check failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "transition check failed")
	}

	return utils.SendSuccess(c, "transition check", check)
}
