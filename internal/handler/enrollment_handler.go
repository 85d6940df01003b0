package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/service"
	"github.com/nhatminh-dev/lavang-api/internal/utils"
)

// EnrollmentHandler exposes the public enrollment portal endpoints.
type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewEnrollmentHandler constructs an enrollment handler.
func NewEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register wires portal routes.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	router.Get("/current-year", h.currentYear)
	router.Get("/classes", h.listClasses)
	router.Get("/family-lookup", h.lookupFamily)
	router.Get("/family/:id", h.getFamily)
	router.Get("/family/:id/suggested-enrollments", h.suggestedEnrollments)
	router.Post("/submit", h.submit)
}

func (h *EnrollmentHandler) currentYear(c *fiber.Ctx) error {
	year, err := h.service.CurrentYear(c.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoEnrollmentYear) {
			return utils.SendError(c, fiber.StatusNotFound, "no school year available")
		}
		if errors.Is(err, service.ErrEnrollmentClosed) {
			return utils.SendError(c, fiber.StatusBadRequest, "enrollment is closed for this school year")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load current school year")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load school year")
	}

	return utils.SendSuccess(c, "current school year", year)
}

func (h *EnrollmentHandler) listClasses(c *fiber.Ctx) error {
	var yearID *uint
	if raw, err := parseQueryInt(c, "academic_year_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid academic_year_id")
	} else if raw > 0 {
		value := uint(raw)
		yearID = &value
	}

	catalog, err := h.service.ListClasses(c.Context(), yearID)
	if err != nil {
		if errors.Is(err, service.ErrNoEnrollmentYear) {
			return utils.SendError(c, fiber.StatusNotFound, "no school year available")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list enrollment classes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list classes")
	}

	return utils.SendSuccess(c, "enrollment classes", catalog)
}

func (h *EnrollmentHandler) lookupFamily(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "email query parameter is required")
	}

	lookup, err := h.service.LookupFamilyByEmail(c.Context(), email)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("family lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "family lookup failed")
	}

	return utils.SendSuccess(c, "family lookup", lookup)
}

func (h *EnrollmentHandler) getFamily(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}

	family, err := h.service.GetFamily(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrFamilyNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "family not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load family")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load family")
	}

	return utils.SendSuccess(c, "family", family)
}

func (h *EnrollmentHandler) suggestedEnrollments(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}

	suggestions, err := h.service.SuggestedEnrollments(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFamilyNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "family not found")
		case errors.Is(err, service.ErrNoEnrollmentYear):
			return utils.SendError(c, fiber.StatusNotFound, "no school year available")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to build enrollment suggestions")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to build suggestions")
		}
	}

	return utils.SendSuccess(c, "suggested enrollments", suggestions)
}

func (h *EnrollmentHandler) submit(c *fiber.Ctx) error {
	var payload dto.EnrollmentSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Submit(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrEmptyFamilyName):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid submission")
		case errors.Is(err, service.ErrSchoolYearNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "school year not found")
		case errors.Is(err, service.ErrFamilyNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "family not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("enrollment submission failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "enrollment submission failed")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrollment submitted", response)
}
