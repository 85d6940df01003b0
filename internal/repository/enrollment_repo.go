package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// EnrollmentRepository handles manual enrollment administration outside the
// submission transaction.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Exists(ctx context.Context, studentID, classID uuid.UUID) (bool, error)
	StudentExists(ctx context.Context, studentID uuid.UUID) (bool, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error)
	DeleteByStudentAndClass(ctx context.Context, studentID, classID uuid.UUID) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs the enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) Exists(ctx context.Context, studentID, classID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepository) StudentExists(ctx context.Context, studentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Class.Program").
		Where("student_id = ?", studentID).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) DeleteByStudentAndClass(ctx context.Context, studentID, classID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
