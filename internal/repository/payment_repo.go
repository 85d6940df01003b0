package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// PaymentFilter narrows payment list queries.
type PaymentFilter struct {
	SchoolYear string
	Status     string
	FamilyID   *uuid.UUID
	Page       int
	PageSize   int
}

// PaymentTotals aggregates tuition bookkeeping for one school year.
type PaymentTotals struct {
	TotalDue     float64
	TotalPaid    float64
	FamilyCount  int64
	PaidCount    int64
	UnpaidCount  int64
	PartialCount int64
}

// PaymentRepository persists family payment records.
type PaymentRepository interface {
	List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Payment, error)
	GetByFamilyAndYear(ctx context.Context, familyID uuid.UUID, schoolYear string) (models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Save(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	Totals(ctx context.Context, schoolYear string) (PaymentTotals, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository constructs the payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})

	if filter.SchoolYear != "" {
		query = query.Where("school_year = ?", filter.SchoolYear)
	}
	if filter.Status != "" {
		query = query.Where("payment_status = ?", filter.Status)
	}
	if filter.FamilyID != nil {
		query = query.Where("family_id = ?", *filter.FamilyID)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var payments []models.Payment
	if err := query.Preload("Family").Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Preload("Family").First(&payment, "id = ?", id).Error; err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

func (r *paymentRepository) GetByFamilyAndYear(ctx context.Context, familyID uuid.UUID, schoolYear string) (models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("family_id = ? AND school_year = ?", familyID, schoolYear).
		First(&payment).Error
	if err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) Save(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Payment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *paymentRepository) Totals(ctx context.Context, schoolYear string) (PaymentTotals, error) {
	base := r.db.WithContext(ctx).Model(&models.Payment{})
	if schoolYear != "" {
		base = base.Where("school_year = ?", schoolYear)
	}

	var totals PaymentTotals
	row := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(amount_due), 0), COALESCE(SUM(amount_paid), 0), COUNT(*)").
		Row()
	if err := row.Scan(&totals.TotalDue, &totals.TotalPaid, &totals.FamilyCount); err != nil {
		return PaymentTotals{}, err
	}

	counts := map[string]*int64{
		models.PaymentStatusPaid:    &totals.PaidCount,
		models.PaymentStatusUnpaid:  &totals.UnpaidCount,
		models.PaymentStatusPartial: &totals.PartialCount,
	}
	for status, target := range counts {
		if err := base.Session(&gorm.Session{}).Where("payment_status = ?", status).Count(target).Error; err != nil {
			return PaymentTotals{}, err
		}
	}

	return totals, nil
}
