package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// PaymentListRequest defines filters for listing payments.
type PaymentListRequest struct {
	Page       int
	PageSize   int
	SchoolYear string
	Status     string
	FamilyID   *uuid.UUID
}

// PaymentCreateRequest records a payment obligation for a family.
type PaymentCreateRequest struct {
	FamilyID      uuid.UUID `json:"family_id" validate:"required"`
	SchoolYear    string    `json:"school_year" validate:"required,min=9,max=16"`
	AmountDue     *float64  `json:"amount_due" validate:"omitempty,min=0"`
	AmountPaid    float64   `json:"amount_paid" validate:"min=0"`
	PaymentStatus string    `json:"payment_status" validate:"omitempty,oneof=unpaid partial paid refunded"`
	PaymentMethod *string   `json:"payment_method"`
	Notes         *string   `json:"notes" validate:"omitempty,max=2000"`
}

// PaymentUpdateRequest partially updates a payment record.
type PaymentUpdateRequest struct {
	AmountDue     *float64 `json:"amount_due" validate:"omitempty,min=0"`
	AmountPaid    *float64 `json:"amount_paid" validate:"omitempty,min=0"`
	PaymentStatus *string  `json:"payment_status" validate:"omitempty,oneof=unpaid partial paid refunded"`
	PaymentMethod *string  `json:"payment_method"`
	Notes         *string  `json:"notes" validate:"omitempty,max=2000"`
}

// MarkPaidRequest settles a family's balance for one school year.
type MarkPaidRequest struct {
	SchoolYear    string   `json:"school_year" validate:"required,min=9,max=16"`
	Amount        *float64 `json:"amount" validate:"omitempty,min=0"`
	PaymentMethod *string  `json:"payment_method"`
}

// PaymentResponse serializes a payment record.
type PaymentResponse struct {
	ID            uuid.UUID  `json:"id"`
	FamilyID      uuid.UUID  `json:"family_id"`
	FamilyName    string     `json:"family_name,omitempty"`
	SchoolYear    string     `json:"school_year"`
	AmountDue     *float64   `json:"amount_due"`
	AmountPaid    float64    `json:"amount_paid"`
	PaymentStatus string     `json:"payment_status"`
	PaymentDate   *time.Time `json:"payment_date"`
	PaymentMethod *string    `json:"payment_method"`
	Notes         *string    `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PaymentListResponse wraps a paginated payment response.
type PaymentListResponse struct {
	Items      []PaymentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// PaymentSummaryResponse aggregates tuition totals for one school year.
type PaymentSummaryResponse struct {
	SchoolYear   string  `json:"school_year"`
	TotalDue     float64 `json:"total_due"`
	TotalPaid    float64 `json:"total_paid"`
	Outstanding  float64 `json:"outstanding"`
	FamilyCount  int64   `json:"family_count"`
	PaidCount    int64   `json:"paid_count"`
	UnpaidCount  int64   `json:"unpaid_count"`
	PartialCount int64   `json:"partial_count"`
}

// NewPaymentResponse maps a payment model to its response shape.
func NewPaymentResponse(payment models.Payment) PaymentResponse {
	response := PaymentResponse{
		ID:            payment.ID,
		FamilyID:      payment.FamilyID,
		SchoolYear:    payment.SchoolYear,
		AmountDue:     payment.AmountDue,
		AmountPaid:    payment.AmountPaid,
		PaymentStatus: payment.PaymentStatus,
		PaymentDate:   payment.PaymentDate,
		PaymentMethod: payment.PaymentMethod,
		Notes:         payment.Notes,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
	}
	if payment.Family != nil {
		response.FamilyName = payment.Family.FamilyName
	}
	return response
}
