package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// FamilyFilter narrows family list queries.
type FamilyFilter struct {
	Search   string
	Page     int
	PageSize int
}

// FamilyRepository provides access to families and their owned child
// entities.
type FamilyRepository interface {
	List(ctx context.Context, filter FamilyFilter) ([]models.Family, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Family, error)
	GetGraph(ctx context.Context, id uuid.UUID) (models.Family, error)
	Create(ctx context.Context, family *models.Family) error
	Save(ctx context.Context, family *models.Family) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetGuardianByEmail(ctx context.Context, email string) (models.Guardian, error)
	CreateGuardian(ctx context.Context, guardian *models.Guardian) error
	SaveGuardian(ctx context.Context, guardian *models.Guardian) error
	GetGuardian(ctx context.Context, familyID, guardianID uuid.UUID) (models.Guardian, error)
	DeleteGuardian(ctx context.Context, familyID, guardianID uuid.UUID) error

	CreateStudent(ctx context.Context, student *models.Student) error
	SaveStudent(ctx context.Context, student *models.Student) error
	GetStudent(ctx context.Context, familyID, studentID uuid.UUID) (models.Student, error)
	DeleteStudent(ctx context.Context, familyID, studentID uuid.UUID) error

	CreateEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error
	SaveEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error
	GetEmergencyContact(ctx context.Context, familyID, contactID uuid.UUID) (models.EmergencyContact, error)
	DeleteEmergencyContact(ctx context.Context, familyID, contactID uuid.UUID) error
}

type familyRepository struct {
	db *gorm.DB
}

// NewFamilyRepository constructs the family repository.
func NewFamilyRepository(db *gorm.DB) FamilyRepository {
	return &familyRepository{db: db}
}

func (r *familyRepository) List(ctx context.Context, filter FamilyFilter) ([]models.Family, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Family{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(family_name) LIKE ? OR LOWER(city) LIKE ?", like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("family_name ASC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var families []models.Family
	if err := query.Preload("Guardians").Preload("Students").Find(&families).Error; err != nil {
		return nil, 0, err
	}

	return families, total, nil
}

func (r *familyRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Family, error) {
	var family models.Family
	if err := r.db.WithContext(ctx).First(&family, "id = ?", id).Error; err != nil {
		return models.Family{}, err
	}
	return family, nil
}

// GetGraph loads a family with its full object graph: guardians, emergency
// contacts, and students with their enrollments down to class and program.
func (r *familyRepository) GetGraph(ctx context.Context, id uuid.UUID) (models.Family, error) {
	var family models.Family
	err := r.db.WithContext(ctx).
		Preload("Guardians").
		Preload("EmergencyContacts").
		Preload("Students").
		Preload("Students.Enrollments").
		Preload("Students.Enrollments.Class").
		Preload("Students.Enrollments.Class.Program").
		First(&family, "id = ?", id).Error
	if err != nil {
		return models.Family{}, err
	}
	return family, nil
}

func (r *familyRepository) Create(ctx context.Context, family *models.Family) error {
	return r.db.WithContext(ctx).Create(family).Error
}

func (r *familyRepository) Save(ctx context.Context, family *models.Family) error {
	return r.db.WithContext(ctx).Save(family).Error
}

func (r *familyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var studentIDs []uuid.UUID
		if err := tx.Model(&models.Student{}).Where("family_id = ?", id).Pluck("id", &studentIDs).Error; err != nil {
			return err
		}
		if len(studentIDs) > 0 {
			if err := tx.Where("student_id IN ?", studentIDs).Delete(&models.Enrollment{}).Error; err != nil {
				return err
			}
		}
		for _, model := range []interface{}{&models.Student{}, &models.Guardian{}, &models.EmergencyContact{}, &models.Payment{}} {
			if err := tx.Where("family_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.Family{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *familyRepository) GetGuardianByEmail(ctx context.Context, email string) (models.Guardian, error) {
	var guardian models.Guardian
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&guardian).Error; err != nil {
		return models.Guardian{}, err
	}
	return guardian, nil
}

func (r *familyRepository) CreateGuardian(ctx context.Context, guardian *models.Guardian) error {
	return r.db.WithContext(ctx).Create(guardian).Error
}

func (r *familyRepository) SaveGuardian(ctx context.Context, guardian *models.Guardian) error {
	return r.db.WithContext(ctx).Save(guardian).Error
}

func (r *familyRepository) GetGuardian(ctx context.Context, familyID, guardianID uuid.UUID) (models.Guardian, error) {
	var guardian models.Guardian
	err := r.db.WithContext(ctx).
		Where("id = ? AND family_id = ?", guardianID, familyID).
		First(&guardian).Error
	if err != nil {
		return models.Guardian{}, err
	}
	return guardian, nil
}

func (r *familyRepository) DeleteGuardian(ctx context.Context, familyID, guardianID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND family_id = ?", guardianID, familyID).
		Delete(&models.Guardian{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *familyRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *familyRepository) SaveStudent(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *familyRepository) GetStudent(ctx context.Context, familyID, studentID uuid.UUID) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Where("id = ? AND family_id = ?", studentID, familyID).
		First(&student).Error
	if err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *familyRepository) DeleteStudent(ctx context.Context, familyID, studentID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", studentID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND family_id = ?", studentID, familyID).Delete(&models.Student{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *familyRepository) CreateEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *familyRepository) SaveEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *familyRepository) GetEmergencyContact(ctx context.Context, familyID, contactID uuid.UUID) (models.EmergencyContact, error) {
	var contact models.EmergencyContact
	err := r.db.WithContext(ctx).
		Where("id = ? AND family_id = ?", contactID, familyID).
		First(&contact).Error
	if err != nil {
		return models.EmergencyContact{}, err
	}
	return contact, nil
}

func (r *familyRepository) DeleteEmergencyContact(ctx context.Context, familyID, contactID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND family_id = ?", contactID, familyID).
		Delete(&models.EmergencyContact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
