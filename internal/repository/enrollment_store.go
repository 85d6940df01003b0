package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// EnrollmentStore is the persistence surface of the enrollment submission
// transaction. Transaction yields a store bound to the database transaction;
// every mutation made through that store commits or rolls back as one unit.
type EnrollmentStore interface {
	Transaction(ctx context.Context, fn func(store EnrollmentStore) error) error

	FindAcademicYear(ctx context.Context, id uint) (models.AcademicYear, error)
	FindFamily(ctx context.Context, id uuid.UUID) (models.Family, error)
	CreateFamily(ctx context.Context, family *models.Family) error
	SaveFamily(ctx context.Context, family *models.Family) error

	ListGuardianIDs(ctx context.Context, familyID uuid.UUID) ([]uuid.UUID, error)
	SaveGuardian(ctx context.Context, guardian *models.Guardian) error
	DeleteGuardian(ctx context.Context, id uuid.UUID) error

	ListStudentIDs(ctx context.Context, familyID uuid.UUID) ([]uuid.UUID, error)
	SaveStudent(ctx context.Context, student *models.Student) error
	DeleteStudent(ctx context.Context, id uuid.UUID) error

	ListEmergencyContactIDs(ctx context.Context, familyID uuid.UUID) ([]uuid.UUID, error)
	SaveEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error
	DeleteEmergencyContact(ctx context.Context, id uuid.UUID) error

	ListClassesForYear(ctx context.Context, yearID uint) ([]models.Class, error)
	DeleteEnrollments(ctx context.Context, studentIDs, classIDs []uuid.UUID) error
	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
}

type enrollmentStore struct {
	db *gorm.DB
}

// NewEnrollmentStore constructs the gorm-backed enrollment store.
func NewEnrollmentStore(db *gorm.DB) EnrollmentStore {
	return &enrollmentStore{db: db}
}

func (s *enrollmentStore) Transaction(ctx context.Context, fn func(store EnrollmentStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&enrollmentStore{db: tx})
	})
}

func (s *enrollmentStore) FindAcademicYear(ctx context.Context, id uint) (models.AcademicYear, error) {
	var year models.AcademicYear
	if err := s.db.WithContext(ctx).First(&year, id).Error; err != nil {
		return models.AcademicYear{}, err
	}
	return year, nil
}

func (s *enrollmentStore) FindFamily(ctx context.Context, id uuid.UUID) (models.Family, error) {
	var family models.Family
	if err := s.db.WithContext(ctx).First(&family, "id = ?", id).Error; err != nil {
		return models.Family{}, err
	}
	return family, nil
}

func (s *enrollmentStore) CreateFamily(ctx context.Context, family *models.Family) error {
	return s.db.WithContext(ctx).Create(family).Error
}

func (s *enrollmentStore) SaveFamily(ctx context.Context, family *models.Family) error {
	return s.db.WithContext(ctx).Save(family).Error
}

func (s *enrollmentStore) ListGuardianIDs(ctx context.Context, familyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.Guardian{}).
		Where("family_id = ?", familyID).
		Pluck("id", &ids).Error
	return ids, err
}

func (s *enrollmentStore) SaveGuardian(ctx context.Context, guardian *models.Guardian) error {
	return s.db.WithContext(ctx).Save(guardian).Error
}

func (s *enrollmentStore) DeleteGuardian(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.Guardian{}, "id = ?", id).Error
}

func (s *enrollmentStore) ListStudentIDs(ctx context.Context, familyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("family_id = ?", familyID).
		Pluck("id", &ids).Error
	return ids, err
}

func (s *enrollmentStore) SaveStudent(ctx context.Context, student *models.Student) error {
	return s.db.WithContext(ctx).Save(student).Error
}

// DeleteStudent removes a student and every enrollment referencing it, so a
// resubmission that drops a child never strands enrollment rows.
func (s *enrollmentStore) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).Where("student_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Student{}, "id = ?", id).Error
}

func (s *enrollmentStore) ListEmergencyContactIDs(ctx context.Context, familyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.EmergencyContact{}).
		Where("family_id = ?", familyID).
		Pluck("id", &ids).Error
	return ids, err
}

func (s *enrollmentStore) SaveEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error {
	return s.db.WithContext(ctx).Save(contact).Error
}

func (s *enrollmentStore) DeleteEmergencyContact(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.EmergencyContact{}, "id = ?", id).Error
}

func (s *enrollmentStore) ListClassesForYear(ctx context.Context, yearID uint) ([]models.Class, error) {
	var classes []models.Class
	err := s.db.WithContext(ctx).
		Preload("Program").
		Where("academic_year_id = ?", yearID).
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

// DeleteEnrollments clears every enrollment pairing one of the given
// students with one of the given classes. Used to implement the
// full-replace-per-year semantics of a submission.
func (s *enrollmentStore) DeleteEnrollments(ctx context.Context, studentIDs, classIDs []uuid.UUID) error {
	if len(studentIDs) == 0 || len(classIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("student_id IN ? AND class_id IN ?", studentIDs, classIDs).
		Delete(&models.Enrollment{}).Error
}

func (s *enrollmentStore) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	return s.db.WithContext(ctx).Create(enrollment).Error
}
