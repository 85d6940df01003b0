package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// ClassFilter narrows class list queries.
type ClassFilter struct {
	AcademicYearID *uint
	ProgramID      *uint
}

// ClassRepository provides access to classes and programs.
type ClassRepository interface {
	List(ctx context.Context, filter ClassFilter) ([]models.Class, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Class, error)
	GetRoster(ctx context.Context, id uuid.UUID) (models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Save(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id uuid.UUID) error
	EnrollmentCount(ctx context.Context, classID uuid.UUID) (int64, error)

	ListPrograms(ctx context.Context) ([]models.Program, error)
	GetProgram(ctx context.Context, id uint) (models.Program, error)
	CreateProgram(ctx context.Context, program *models.Program) error
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository constructs the class repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) List(ctx context.Context, filter ClassFilter) ([]models.Class, error) {
	query := r.db.WithContext(ctx).Model(&models.Class{}).Preload("Program")

	if filter.AcademicYearID != nil {
		query = query.Where("academic_year_id = ?", *filter.AcademicYearID)
	}
	if filter.ProgramID != nil {
		query = query.Where("program_id = ?", *filter.ProgramID)
	}

	var classes []models.Class
	if err := query.Order("name ASC").Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Class, error) {
	var class models.Class
	err := r.db.WithContext(ctx).
		Preload("Program").
		First(&class, "id = ?", id).Error
	if err != nil {
		return models.Class{}, err
	}
	return class, nil
}

// GetRoster loads a class with its enrollments and the enrolled students.
func (r *classRepository) GetRoster(ctx context.Context, id uuid.UUID) (models.Class, error) {
	var class models.Class
	err := r.db.WithContext(ctx).
		Preload("Program").
		Preload("Enrollments").
		Preload("Enrollments.Student").
		First(&class, "id = ?", id).Error
	if err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) Save(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Class{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *classRepository) EnrollmentCount(ctx context.Context, classID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("class_id = ?", classID).
		Count(&count).Error
	return count, err
}

func (r *classRepository) ListPrograms(ctx context.Context) ([]models.Program, error) {
	var programs []models.Program
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *classRepository) GetProgram(ctx context.Context, id uint) (models.Program, error) {
	var program models.Program
	if err := r.db.WithContext(ctx).First(&program, id).Error; err != nil {
		return models.Program{}, err
	}
	return program, nil
}

func (r *classRepository) CreateProgram(ctx context.Context, program *models.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}
