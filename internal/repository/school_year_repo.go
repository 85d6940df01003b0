package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// TransitionResult reports the outcome of an active-year swap.
type TransitionResult struct {
	PreviousActiveID *uint
	NewActiveID      uint
}

// SchoolYearRepository persists academic years and enforces the
// single-active-year mutation pattern.
type SchoolYearRepository interface {
	List(ctx context.Context) ([]models.AcademicYear, error)
	GetByID(ctx context.Context, id uint) (models.AcademicYear, error)
	GetByName(ctx context.Context, name string) (models.AcademicYear, error)
	GetActive(ctx context.Context) (models.AcademicYear, error)
	Newest(ctx context.Context) (models.AcademicYear, error)
	NewestInactiveWithTransition(ctx context.Context) (models.AcademicYear, error)
	Create(ctx context.Context, year *models.AcademicYear) error
	CreateActivating(ctx context.Context, year *models.AcademicYear) error
	Save(ctx context.Context, year *models.AcademicYear) error
	Delete(ctx context.Context, id uint) error
	DeactivateOthers(ctx context.Context, exceptID uint) error
	Transition(ctx context.Context, targetID uint) (TransitionResult, error)
	ClassCount(ctx context.Context, yearID uint) (int64, error)
	EnrollmentCount(ctx context.Context, yearID uint) (int64, error)
}

type schoolYearRepository struct {
	db *gorm.DB
}

// NewSchoolYearRepository constructs the school year repository.
func NewSchoolYearRepository(db *gorm.DB) SchoolYearRepository {
	return &schoolYearRepository{db: db}
}

func (r *schoolYearRepository) List(ctx context.Context) ([]models.AcademicYear, error) {
	var years []models.AcademicYear
	err := r.db.WithContext(ctx).
		Order("start_year DESC, id DESC").
		Find(&years).Error
	return years, err
}

func (r *schoolYearRepository) GetByID(ctx context.Context, id uint) (models.AcademicYear, error) {
	var year models.AcademicYear
	if err := r.db.WithContext(ctx).First(&year, id).Error; err != nil {
		return models.AcademicYear{}, err
	}
	return year, nil
}

func (r *schoolYearRepository) GetByName(ctx context.Context, name string) (models.AcademicYear, error) {
	var year models.AcademicYear
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&year).Error; err != nil {
		return models.AcademicYear{}, err
	}
	return year, nil
}

func (r *schoolYearRepository) GetActive(ctx context.Context) (models.AcademicYear, error) {
	var year models.AcademicYear
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("start_year DESC, id DESC").
		First(&year).Error
	if err != nil {
		return models.AcademicYear{}, err
	}
	return year, nil
}

func (r *schoolYearRepository) Newest(ctx context.Context) (models.AcademicYear, error) {
	var year models.AcademicYear
	err := r.db.WithContext(ctx).
		Order("start_year DESC, id DESC").
		First(&year).Error
	if err != nil {
		return models.AcademicYear{}, err
	}
	return year, nil
}

func (r *schoolYearRepository) NewestInactiveWithTransition(ctx context.Context) (models.AcademicYear, error) {
	var year models.AcademicYear
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND transition_date IS NOT NULL", false).
		Order("start_year DESC").
		First(&year).Error
	if err != nil {
		return models.AcademicYear{}, err
	}
	return year, nil
}

func (r *schoolYearRepository) Create(ctx context.Context, year *models.AcademicYear) error {
	return r.db.WithContext(ctx).Create(year).Error
}

// CreateActivating inserts a year that starts out active. The previously
// active year is cleared before the insert in the same transaction, so the
// single-active-year constraint never sees two active rows.
func (r *schoolYearRepository) CreateActivating(ctx context.Context, year *models.AcademicYear) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.AcademicYear{}).
			Where("is_active = ?", true).
			Updates(map[string]interface{}{"is_active": false, "is_current": false}).Error
		if err != nil {
			return err
		}
		return tx.Create(year).Error
	})
}

func (r *schoolYearRepository) Save(ctx context.Context, year *models.AcademicYear) error {
	return r.db.WithContext(ctx).Save(year).Error
}

func (r *schoolYearRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.AcademicYear{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeactivateOthers clears is_active and is_current on every year except the
// given one. Creation and updates that activate a year must call this first
// so at most one year stays active.
func (r *schoolYearRepository) DeactivateOthers(ctx context.Context, exceptID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.AcademicYear{}).
		Where("id <> ? AND is_active = ?", exceptID, true).
		Updates(map[string]interface{}{"is_active": false, "is_current": false}).Error
}

// Transition swaps the active year to targetID in one transaction: the old
// active year loses is_active/is_current, the target gains both.
func (r *schoolYearRepository) Transition(ctx context.Context, targetID uint) (TransitionResult, error) {
	var result TransitionResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.AcademicYear
		if err := tx.First(&target, targetID).Error; err != nil {
			return err
		}

		var active models.AcademicYear
		err := tx.Where("is_active = ?", true).First(&active).Error
		switch {
		case err == nil:
			if active.ID != target.ID {
				active.IsActive = false
				active.IsCurrent = false
				if err := tx.Save(&active).Error; err != nil {
					return err
				}
			}
			previous := active.ID
			result.PreviousActiveID = &previous
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No active year yet; nothing to deactivate.
		default:
			return err
		}

		target.IsActive = true
		target.IsCurrent = true
		if err := tx.Save(&target).Error; err != nil {
			return err
		}

		result.NewActiveID = target.ID
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}

	return result, nil
}

func (r *schoolYearRepository) ClassCount(ctx context.Context, yearID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Class{}).
		Where("academic_year_id = ?", yearID).
		Count(&count).Error
	return count, err
}

func (r *schoolYearRepository) EnrollmentCount(ctx context.Context, yearID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Joins("JOIN classes ON classes.id = enrollments.class_id").
		Where("classes.academic_year_id = ?", yearID).
		Count(&count).Error
	return count, err
}
