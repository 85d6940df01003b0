package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses for family tuition bookkeeping.
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPartial  = "partial"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Payment tracks what a family owes and has paid for one school year.
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"family_id"`
	SchoolYear    string     `gorm:"size:16;not null;index" json:"school_year"`
	AmountDue     *float64   `json:"amount_due"`
	AmountPaid    float64    `gorm:"default:0" json:"amount_paid"`
	PaymentStatus string     `gorm:"size:16;default:unpaid" json:"payment_status"`
	PaymentDate   *time.Time `json:"payment_date"`
	PaymentMethod *string    `gorm:"size:32" json:"payment_method"`
	Notes         *string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Family *Family `json:"family,omitempty"`
}
