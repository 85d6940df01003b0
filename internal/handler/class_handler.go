package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
	"github.com/nhatminh-dev/lavang-api/internal/service"
	"github.com/nhatminh-dev/lavang-api/internal/utils"
)

// ClassHandler exposes class and roster administration endpoints.
type ClassHandler struct {
	service service.ClassService
	logger  zerolog.Logger
}

// NewClassHandler constructs a class handler.
func NewClassHandler(service service.ClassService, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		logger:  logger.With().Str("component", "class_handler").Logger(),
	}
}

// Register wires class routes.
func (h *ClassHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/enroll", h.enroll)
	router.Post("/bulk-enroll", h.bulkEnroll)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)
	router.Get("/:id/roster", h.roster)
	router.Get("/:id/roster/export", h.exportRoster)
	router.Delete("/:id/students/:studentId", h.unenroll)
}

// RegisterPrograms wires program routes.
func (h *ClassHandler) RegisterPrograms(router fiber.Router) {
	router.Get("", h.listPrograms)
	router.Post("", h.createProgram)
}

func (h *ClassHandler) list(c *fiber.Ctx) error {
	filter := repository.ClassFilter{}

	if raw, err := parseQueryInt(c, "academic_year_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid academic_year_id")
	} else if raw > 0 {
		value := uint(raw)
		filter.AcademicYearID = &value
	}
	if raw, err := parseQueryInt(c, "program_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid program_id")
	} else if raw > 0 {
		value := uint(raw)
		filter.ProgramID = &value
	}

	classes, err := h.service.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list classes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list classes")
	}

	return utils.SendSuccess(c, "classes", classes)
}

func (h *ClassHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	class, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load class")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load class")
	}

	return utils.SendSuccess(c, "class", class)
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	class, err := h.service.Create(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid class payload")
		case errors.Is(err, service.ErrProgramNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "program not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create class")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *ClassHandler) update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	var payload dto.ClassUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	class, err := h.service.Update(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid class payload")
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrProgramNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "program not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update class")
		}
	}

	return utils.SendSuccess(c, "class updated", class)
}

func (h *ClassHandler) remove(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	if err := h.service.Delete(c.Context(), id, activityActorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrClassHasEnrollments):
			return utils.SendError(c, fiber.StatusConflict, "class still has enrolled students")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete class")
		}
	}

	return utils.SendSuccess(c, "class deleted", fiber.Map{"id": id})
}

func (h *ClassHandler) roster(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	roster, err := h.service.GetRoster(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load roster")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load roster")
	}

	return utils.SendSuccess(c, "class roster", roster)
}

func (h *ClassHandler) exportRoster(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	payload, filename, err := h.service.ExportRosterCSV(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export roster")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export roster")
	}

	return utils.SendCSV(c, filename, payload)
}

func (h *ClassHandler) enroll(c *fiber.Ctx) error {
	var payload dto.ManualEnrollmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	enrollment, err := h.service.Enroll(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid enrollment payload")
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case errors.Is(err, service.ErrAlreadyEnrolled):
			return utils.SendError(c, fiber.StatusConflict, "student already enrolled")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to enroll student")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to enroll student")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student enrolled", enrollment)
}

func (h *ClassHandler) bulkEnroll(c *fiber.Ctx) error {
	var payload dto.BulkEnrollmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.BulkEnroll(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid bulk enrollment payload")
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("bulk enrollment failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "bulk enrollment failed")
		}
	}

	return utils.SendSuccess(c, "bulk enrollment completed", response)
}

func (h *ClassHandler) unenroll(c *fiber.Ctx) error {
	classID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}
	studentID, err := parseUUIDParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	if err := h.service.Unenroll(c.Context(), studentID, classID, activityActorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrEnrollmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to unenroll student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to unenroll student")
	}

	return utils.SendSuccess(c, "student unenrolled", fiber.Map{"class_id": classID, "student_id": studentID})
}

func (h *ClassHandler) listPrograms(c *fiber.Ctx) error {
	programs, err := h.service.ListPrograms(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list programs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list programs")
	}

	return utils.SendSuccess(c, "programs", programs)
}

func (h *ClassHandler) createProgram(c *fiber.Ctx) error {
	var payload struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	program, err := h.service.CreateProgram(c.Context(), payload.Name, activityActorFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create program")
		return utils.SendError(c, fiber.StatusBadRequest, "failed to create program")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "program created", program)
}
