package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
)

// Sentinel errors surfaced by payment administration.
var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrPaymentDuplicate = errors.New("payment already recorded for this family and school year")
)

// PaymentService tracks what families owe and have paid per school year.
type PaymentService interface {
	List(ctx context.Context, req dto.PaymentListRequest) (dto.PaymentListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (dto.PaymentResponse, error)
	Create(ctx context.Context, req dto.PaymentCreateRequest, actor ActivityActor) (dto.PaymentResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.PaymentUpdateRequest, actor ActivityActor) (dto.PaymentResponse, error)
	Delete(ctx context.Context, id uuid.UUID, actor ActivityActor) error
	MarkPaid(ctx context.Context, familyID uuid.UUID, req dto.MarkPaidRequest, actor ActivityActor) (dto.PaymentResponse, error)
	Summary(ctx context.Context, schoolYear string) (dto.PaymentSummaryResponse, error)
	ExportCSV(ctx context.Context, schoolYear string) ([]byte, string, error)
}

type paymentService struct {
	repo      repository.PaymentRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo repository.PaymentRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) PaymentService {
	return &paymentService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "payment_service").Logger(),
	}
}

// deriveStatus keeps the status consistent with the amounts unless the
// caller pins one explicitly.
func deriveStatus(amountDue *float64, amountPaid float64) string {
	switch {
	case amountPaid <= 0:
		return models.PaymentStatusUnpaid
	case amountDue != nil && amountPaid >= *amountDue:
		return models.PaymentStatusPaid
	default:
		return models.PaymentStatusPartial
	}
}

func (s *paymentService) List(ctx context.Context, req dto.PaymentListRequest) (dto.PaymentListResponse, error) {
	page, pageSize := normalizePagination(req.Page, req.PageSize)

	payments, total, err := s.repo.List(ctx, repository.PaymentFilter{
		SchoolYear: strings.TrimSpace(req.SchoolYear),
		Status:     strings.TrimSpace(req.Status),
		FamilyID:   req.FamilyID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return dto.PaymentListResponse{}, err
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		items = append(items, dto.NewPaymentResponse(payment))
	}

	return dto.PaymentListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}, nil
}

func (s *paymentService) Get(ctx context.Context, id uuid.UUID) (dto.PaymentResponse, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentResponse{}, ErrPaymentNotFound
		}
		return dto.PaymentResponse{}, err
	}
	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) Create(ctx context.Context, req dto.PaymentCreateRequest, actor ActivityActor) (dto.PaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PaymentResponse{}, err
	}

	schoolYear := strings.TrimSpace(req.SchoolYear)
	if _, err := s.repo.GetByFamilyAndYear(ctx, req.FamilyID, schoolYear); err == nil {
		return dto.PaymentResponse{}, ErrPaymentDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.PaymentResponse{}, err
	}

	status := req.PaymentStatus
	if status == "" {
		status = deriveStatus(req.AmountDue, req.AmountPaid)
	}

	payment := models.Payment{
		ID:            uuid.New(),
		FamilyID:      req.FamilyID,
		SchoolYear:    schoolYear,
		AmountDue:     req.AmountDue,
		AmountPaid:    req.AmountPaid,
		PaymentStatus: status,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	if req.AmountPaid > 0 {
		now := time.Now()
		payment.PaymentDate = &now
	}

	if err := s.repo.Create(ctx, &payment); err != nil {
		return dto.PaymentResponse{}, err
	}

	s.recordActivity(ctx, actor, "payment.created", payment.ID, map[string]interface{}{
		"family_id":   payment.FamilyID.String(),
		"school_year": payment.SchoolYear,
	})

	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) Update(ctx context.Context, id uuid.UUID, req dto.PaymentUpdateRequest, actor ActivityActor) (dto.PaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PaymentResponse{}, err
	}

	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentResponse{}, ErrPaymentNotFound
		}
		return dto.PaymentResponse{}, err
	}

	if req.AmountDue != nil {
		payment.AmountDue = req.AmountDue
	}
	if req.AmountPaid != nil {
		payment.AmountPaid = *req.AmountPaid
		if *req.AmountPaid > 0 && payment.PaymentDate == nil {
			now := time.Now()
			payment.PaymentDate = &now
		}
	}
	if req.PaymentMethod != nil {
		payment.PaymentMethod = req.PaymentMethod
	}
	if req.Notes != nil {
		payment.Notes = req.Notes
	}
	if req.PaymentStatus != nil {
		payment.PaymentStatus = *req.PaymentStatus
	} else if req.AmountDue != nil || req.AmountPaid != nil {
		payment.PaymentStatus = deriveStatus(payment.AmountDue, payment.AmountPaid)
	}

	if err := s.repo.Save(ctx, &payment); err != nil {
		return dto.PaymentResponse{}, err
	}

	s.recordActivity(ctx, actor, "payment.updated", payment.ID, nil)

	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) Delete(ctx context.Context, id uuid.UUID, actor ActivityActor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}

	s.recordActivity(ctx, actor, "payment.deleted", id, nil)
	return nil
}

// MarkPaid settles a family's balance for the school year, creating the
// payment record if none exists yet.
func (s *paymentService) MarkPaid(ctx context.Context, familyID uuid.UUID, req dto.MarkPaidRequest, actor ActivityActor) (dto.PaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PaymentResponse{}, err
	}

	schoolYear := strings.TrimSpace(req.SchoolYear)
	now := time.Now()

	payment, err := s.repo.GetByFamilyAndYear(ctx, familyID, schoolYear)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentResponse{}, err
		}
		payment = models.Payment{
			ID:         uuid.New(),
			FamilyID:   familyID,
			SchoolYear: schoolYear,
		}
		if err := s.repo.Create(ctx, &payment); err != nil {
			return dto.PaymentResponse{}, err
		}
	}

	switch {
	case req.Amount != nil:
		payment.AmountPaid = *req.Amount
	case payment.AmountDue != nil:
		payment.AmountPaid = *payment.AmountDue
	}
	payment.PaymentStatus = models.PaymentStatusPaid
	payment.PaymentDate = &now
	if req.PaymentMethod != nil {
		payment.PaymentMethod = req.PaymentMethod
	}

	if err := s.repo.Save(ctx, &payment); err != nil {
		return dto.PaymentResponse{}, err
	}

	s.recordActivity(ctx, actor, "payment.marked_paid", payment.ID, map[string]interface{}{
		"family_id":   familyID.String(),
		"school_year": schoolYear,
	})

	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) Summary(ctx context.Context, schoolYear string) (dto.PaymentSummaryResponse, error) {
	trimmed := strings.TrimSpace(schoolYear)
	if trimmed == "" {
		return dto.PaymentSummaryResponse{}, errors.New("school year is required")
	}

	totals, err := s.repo.Totals(ctx, trimmed)
	if err != nil {
		return dto.PaymentSummaryResponse{}, err
	}

	return dto.PaymentSummaryResponse{
		SchoolYear:   trimmed,
		TotalDue:     totals.TotalDue,
		TotalPaid:    totals.TotalPaid,
		Outstanding:  totals.TotalDue - totals.TotalPaid,
		FamilyCount:  totals.FamilyCount,
		PaidCount:    totals.PaidCount,
		UnpaidCount:  totals.UnpaidCount,
		PartialCount: totals.PartialCount,
	}, nil
}

// ExportCSV renders every payment record for a school year as CSV.
func (s *paymentService) ExportCSV(ctx context.Context, schoolYear string) ([]byte, string, error) {
	trimmed := strings.TrimSpace(schoolYear)
	if trimmed == "" {
		return nil, "", errors.New("school year is required")
	}

	payments, _, err := s.repo.List(ctx, repository.PaymentFilter{
		SchoolYear: trimmed,
		Page:       1,
		PageSize:   maxPageSize * 100,
	})
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Family", "School Year", "Amount Due", "Amount Paid", "Status", "Payment Date", "Method"}); err != nil {
		return nil, "", err
	}
	for _, payment := range payments {
		familyName := ""
		if payment.Family != nil {
			familyName = payment.Family.FamilyName
		}
		amountDue := ""
		if payment.AmountDue != nil {
			amountDue = strconv.FormatFloat(*payment.AmountDue, 'f', 2, 64)
		}
		paymentDate := ""
		if payment.PaymentDate != nil {
			paymentDate = payment.PaymentDate.Format(time.DateOnly)
		}
		method := ""
		if payment.PaymentMethod != nil {
			method = *payment.PaymentMethod
		}
		record := []string{
			familyName,
			payment.SchoolYear,
			amountDue,
			strconv.FormatFloat(payment.AmountPaid, 'f', 2, 64),
			payment.PaymentStatus,
			paymentDate,
			method,
		}
		if err := writer.Write(record); err != nil {
			return nil, "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("payments_%s.csv", strings.ReplaceAll(trimmed, "-", "_"))
	return buf.Bytes(), filename, nil
}

func (s *paymentService) recordActivity(ctx context.Context, actor ActivityActor, action string, paymentID uuid.UUID, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "payment",
		EntityID:   paymentID.String(),
		Metadata:   metadata,
	})
}
