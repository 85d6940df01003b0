package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/service"
	"github.com/nhatminh-dev/lavang-api/internal/utils"
)

// FamilyHandler exposes family administration endpoints.
type FamilyHandler struct {
	service service.FamilyService
	logger  zerolog.Logger
}

// NewFamilyHandler constructs a family handler.
func NewFamilyHandler(service service.FamilyService, logger zerolog.Logger) *FamilyHandler {
	return &FamilyHandler{
		service: service,
		logger:  logger.With().Str("component", "family_handler").Logger(),
	}
}

// Register wires family routes.
func (h *FamilyHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)

	router.Post("/:id/guardians", h.addGuardian)
	router.Put("/:id/guardians/:guardianId", h.updateGuardian)
	router.Delete("/:id/guardians/:guardianId", h.removeGuardian)

	router.Post("/:id/students", h.addStudent)
	router.Put("/:id/students/:studentId", h.updateStudent)
	router.Delete("/:id/students/:studentId", h.removeStudent)

	router.Post("/:id/emergency-contacts", h.addContact)
	router.Put("/:id/emergency-contacts/:contactId", h.updateContact)
	router.Delete("/:id/emergency-contacts/:contactId", h.removeContact)
}

func (h *FamilyHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	response, err := h.service.List(c.Context(), dto.FamilyListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list families")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list families")
	}

	return utils.SendSuccess(c, "families", response)
}

func (h *FamilyHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}

	family, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrFamilyNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "family not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load family")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load family")
	}

	return utils.SendSuccess(c, "family", family)
}

func (h *FamilyHandler) create(c *fiber.Ctx) error {
	var payload dto.FamilyInfo
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	family, err := h.service.Create(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid family payload")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create family")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create family")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "family created", family)
}

func (h *FamilyHandler) update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}

	var payload dto.FamilyInfo
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	family, err := h.service.Update(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid family payload")
		case errors.Is(err, service.ErrFamilyNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "family not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update family")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update family")
		}
	}

	return utils.SendSuccess(c, "family updated", family)
}

func (h *FamilyHandler) remove(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}

	if err := h.service.Delete(c.Context(), id, activityActorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrFamilyNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "family not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete family")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete family")
	}

	return utils.SendSuccess(c, "family deleted", fiber.Map{"id": id})
}

func (h *FamilyHandler) addGuardian(c *fiber.Ctx) error {
	familyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}

	var payload dto.GuardianPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	guardian, err := h.service.AddGuardian(c.Context(), familyID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid guardian payload")
		case errors.Is(err, service.ErrFamilyNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "family not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to add guardian")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to add guardian")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "guardian added", guardian)
}

func (h *FamilyHandler) updateGuardian(c *fiber.Ctx) error {
	familyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}
	guardianID, err := parseUUIDParam(c, "guardianId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid guardian id")
	}

	var payload dto.GuardianPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	guardian, err := h.service.UpdateGuardian(c.Context(), familyID, guardianID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid guardian payload")
		case errors.Is(err, service.ErrGuardianNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "guardian not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update guardian")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update guardian")
		}
	}

	return utils.SendSuccess(c, "guardian updated", guardian)
}

func (h *FamilyHandler) removeGuardian(c *fiber.Ctx) error {
	familyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}
	guardianID, err := parseUUIDParam(c, "guardianId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid guardian id")
	}

	if err := h.service.RemoveGuardian(c.Context(), familyID, guardianID); err != nil {
		if errors.Is(err, service.ErrGuardianNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "guardian not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to remove guardian")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove guardian")
	}

	return utils.SendSuccess(c, "guardian removed", fiber.Map{"id": guardianID})
}

func (h *FamilyHandler) addStudent(c *fiber.Ctx) error {
	familyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}

	var payload dto.StudentPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.AddStudent(c.Context(), familyID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid student payload")
		case errors.Is(err, service.ErrFamilyNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "family not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to add student")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to add student")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student added", student)
}

func (h *FamilyHandler) updateStudent(c *fiber.Ctx) error {
	familyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}
	studentID, err := parseUUIDParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	var payload dto.StudentPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.UpdateStudent(c.Context(), familyID, studentID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid student payload")
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update student")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update student")
		}
	}

	return utils.SendSuccess(c, "student updated", student)
}

func (h *FamilyHandler) removeStudent(c *fiber.Ctx) error {
	familyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}
	studentID, err := parseUUIDParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	if err := h.service.RemoveStudent(c.Context(), familyID, studentID); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to remove student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove student")
	}

	return utils.SendSuccess(c, "student removed", fiber.Map{"id": studentID})
}

func (h *FamilyHandler) addContact(c *fiber.Ctx) error {
	familyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}

	var payload dto.EmergencyContactPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	contact, err := h.service.AddEmergencyContact(c.Context(), familyID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid contact payload")
		case errors.Is(err, service.ErrFamilyNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "family not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to add emergency contact")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to add emergency contact")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "emergency contact added", contact)
}

func (h *FamilyHandler) updateContact(c *fiber.Ctx) error {
	familyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}
	contactID, err := parseUUIDParam(c, "contactId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid contact id")
	}

	var payload dto.EmergencyContactPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	contact, err := h.service.UpdateEmergencyContact(c.Context(), familyID, contactID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid contact payload")
		case errors.Is(err, service.ErrContactNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "emergency contact not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update emergency contact")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update emergency contact")
		}
	}

	return utils.SendSuccess(c, "emergency contact updated", contact)
}

func (h *FamilyHandler) removeContact(c *fiber.Ctx) error {
	familyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}
	contactID, err := parseUUIDParam(c, "contactId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid contact id")
	}

	if err := h.service.RemoveEmergencyContact(c.Context(), familyID, contactID); err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "emergency contact not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to remove emergency contact")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove emergency contact")
	}

	return utils.SendSuccess(c, "emergency contact removed", fiber.Map{"id": contactID})
}
