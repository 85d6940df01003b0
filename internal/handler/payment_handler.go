package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/service"
	"github.com/nhatminh-dev/lavang-api/internal/utils"
)

// PaymentHandler exposes tuition payment administration endpoints.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler constructs a payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("component", "payment_handler").Logger(),
	}
}

// Register wires payment routes.
func (h *PaymentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/summary", h.summary)
	router.Get("/export", h.export)
	router.Post("/families/:familyId/mark-paid", h.markPaid)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *PaymentHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	req := dto.PaymentListRequest{
		Page:       page,
		PageSize:   pageSize,
		SchoolYear: c.Query("school_year"),
		Status:     c.Query("status"),
	}
	if raw := c.Query("family_id"); raw != "" {
		familyID, err := uuid.Parse(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid family_id")
		}
		req.FamilyID = &familyID
	}

	payments, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list payments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list payments")
	}

	return utils.SendSuccess(c, "payments", payments)
}

func (h *PaymentHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payment id")
	}

	payment, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "payment not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load payment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load payment")
	}

	return utils.SendSuccess(c, "payment", payment)
}

func (h *PaymentHandler) create(c *fiber.Ctx) error {
	var payload dto.PaymentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	payment, err := h.service.Create(c.Context(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payment payload")
		case errors.Is(err, service.ErrPaymentDuplicate):
			return utils.SendError(c, fiber.StatusConflict, "payment record already exists for this school year")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create payment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create payment")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "payment recorded", payment)
}

func (h *PaymentHandler) update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payment id")
	}

	var payload dto.PaymentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	payment, err := h.service.Update(c.Context(), id, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payment payload")
		case errors.Is(err, service.ErrPaymentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "payment not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update payment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update payment")
		}
	}

	return utils.SendSuccess(c, "payment updated", payment)
}

func (h *PaymentHandler) remove(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payment id")
	}

	if err := h.service.Delete(c.Context(), id, activityActorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "payment not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete payment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete payment")
	}

	return utils.SendSuccess(c, "payment deleted", fiber.Map{"id": id})
}

func (h *PaymentHandler) markPaid(c *fiber.Ctx) error {
	familyID, err := parseUUIDParam(c, "familyId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid family id")
	}

	var payload dto.MarkPaidRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	payment, err := h.service.MarkPaid(c.Context(), familyID, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid mark-paid payload")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to mark family paid")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to mark family paid")
		}
	}

	return utils.SendSuccess(c, "payment settled", payment)
}

func (h *PaymentHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context(), c.Query("school_year"))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build payment summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build payment summary")
	}

	return utils.SendSuccess(c, "payment summary", summary)
}

func (h *PaymentHandler) export(c *fiber.Ctx) error {
	payload, filename, err := h.service.ExportCSV(c.Context(), c.Query("school_year"))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export payments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export payments")
	}

	return utils.SendCSV(c, filename, payload)
}
