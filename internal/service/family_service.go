package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
)

// Sentinel errors surfaced by family administration.
var (
	ErrGuardianNotFound = errors.New("guardian not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrContactNotFound  = errors.New("emergency contact not found")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// FamilyService provides the admin CRUD surface over families and their
// child entities.
type FamilyService interface {
	List(ctx context.Context, req dto.FamilyListRequest) (dto.FamilyListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (dto.FamilyResponse, error)
	Create(ctx context.Context, info dto.FamilyInfo, actor ActivityActor) (dto.FamilyResponse, error)
	Update(ctx context.Context, id uuid.UUID, info dto.FamilyInfo, actor ActivityActor) (dto.FamilyResponse, error)
	Delete(ctx context.Context, id uuid.UUID, actor ActivityActor) error

	AddGuardian(ctx context.Context, familyID uuid.UUID, payload dto.GuardianPayload) (dto.GuardianResponse, error)
	UpdateGuardian(ctx context.Context, familyID, guardianID uuid.UUID, payload dto.GuardianPayload) (dto.GuardianResponse, error)
	RemoveGuardian(ctx context.Context, familyID, guardianID uuid.UUID) error

	AddStudent(ctx context.Context, familyID uuid.UUID, payload dto.StudentPayload) (dto.StudentResponse, error)
	UpdateStudent(ctx context.Context, familyID, studentID uuid.UUID, payload dto.StudentPayload) (dto.StudentResponse, error)
	RemoveStudent(ctx context.Context, familyID, studentID uuid.UUID) error

	AddEmergencyContact(ctx context.Context, familyID uuid.UUID, payload dto.EmergencyContactPayload) (dto.EmergencyContactResponse, error)
	UpdateEmergencyContact(ctx context.Context, familyID, contactID uuid.UUID, payload dto.EmergencyContactPayload) (dto.EmergencyContactResponse, error)
	RemoveEmergencyContact(ctx context.Context, familyID, contactID uuid.UUID) error
}

type familyService struct {
	repo      repository.FamilyRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewFamilyService constructs the family service.
func NewFamilyService(repo repository.FamilyRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) FamilyService {
	return &familyService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		activity:  activity,
		logger:    logger.With().Str("component", "family_service").Logger(),
	}
}

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func (s *familyService) List(ctx context.Context, req dto.FamilyListRequest) (dto.FamilyListResponse, error) {
	page, pageSize := normalizePagination(req.Page, req.PageSize)

	families, total, err := s.repo.List(ctx, repository.FamilyFilter{
		Search:   strings.TrimSpace(req.Search),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.FamilyListResponse{}, err
	}

	items := make([]dto.FamilyResponse, 0, len(families))
	for _, family := range families {
		items = append(items, dto.NewFamilyResponse(family))
	}

	return dto.FamilyListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}, nil
}

func (s *familyService) Get(ctx context.Context, id uuid.UUID) (dto.FamilyResponse, error) {
	family, err := s.repo.GetGraph(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FamilyResponse{}, ErrFamilyNotFound
		}
		return dto.FamilyResponse{}, err
	}
	return dto.NewFamilyResponse(family), nil
}

func (s *familyService) Create(ctx context.Context, info dto.FamilyInfo, actor ActivityActor) (dto.FamilyResponse, error) {
	if err := s.validator.Struct(info); err != nil {
		return dto.FamilyResponse{}, err
	}

	family := models.Family{
		ID:         uuid.New(),
		FamilyName: strings.TrimSpace(info.FamilyName),
		Address:    strings.TrimSpace(info.Address),
		City:       strings.TrimSpace(info.City),
		State:      strings.TrimSpace(info.State),
		ZipCode:    strings.TrimSpace(info.ZipCode),
		DioceseID:  info.DioceseID,
	}

	if err := s.repo.Create(ctx, &family); err != nil {
		return dto.FamilyResponse{}, err
	}

	s.recordActivity(ctx, actor, "family.created", family.ID, map[string]interface{}{"family_name": family.FamilyName})

	return dto.NewFamilyResponse(family), nil
}

func (s *familyService) Update(ctx context.Context, id uuid.UUID, info dto.FamilyInfo, actor ActivityActor) (dto.FamilyResponse, error) {
	if err := s.validator.Struct(info); err != nil {
		return dto.FamilyResponse{}, err
	}

	family, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FamilyResponse{}, ErrFamilyNotFound
		}
		return dto.FamilyResponse{}, err
	}

	family.FamilyName = strings.TrimSpace(info.FamilyName)
	family.Address = strings.TrimSpace(info.Address)
	family.City = strings.TrimSpace(info.City)
	family.State = strings.TrimSpace(info.State)
	family.ZipCode = strings.TrimSpace(info.ZipCode)
	family.DioceseID = info.DioceseID

	if err := s.repo.Save(ctx, &family); err != nil {
		return dto.FamilyResponse{}, err
	}

	s.recordActivity(ctx, actor, "family.updated", family.ID, nil)

	return dto.NewFamilyResponse(family), nil
}

// Delete removes a family and everything it owns: guardians, students,
// emergency contacts, payments and the students' enrollments.
func (s *familyService) Delete(ctx context.Context, id uuid.UUID, actor ActivityActor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFamilyNotFound
		}
		return err
	}

	s.recordActivity(ctx, actor, "family.deleted", id, nil)
	return nil
}

func (s *familyService) AddGuardian(ctx context.Context, familyID uuid.UUID, payload dto.GuardianPayload) (dto.GuardianResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GuardianResponse{}, err
	}
	if err := s.ensureFamily(ctx, familyID); err != nil {
		return dto.GuardianResponse{}, err
	}

	guardian := models.Guardian{
		ID:                   uuid.New(),
		FamilyID:             familyID,
		Name:                 strings.TrimSpace(payload.Name),
		Email:                strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:                strings.TrimSpace(payload.Phone),
		RelationshipToFamily: strings.TrimSpace(payload.RelationshipToFamily),
	}

	if err := s.repo.CreateGuardian(ctx, &guardian); err != nil {
		return dto.GuardianResponse{}, err
	}
	return dto.NewGuardianResponse(guardian), nil
}

func (s *familyService) UpdateGuardian(ctx context.Context, familyID, guardianID uuid.UUID, payload dto.GuardianPayload) (dto.GuardianResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GuardianResponse{}, err
	}

	guardian, err := s.repo.GetGuardian(ctx, familyID, guardianID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GuardianResponse{}, ErrGuardianNotFound
		}
		return dto.GuardianResponse{}, err
	}

	guardian.Name = strings.TrimSpace(payload.Name)
	guardian.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	guardian.Phone = strings.TrimSpace(payload.Phone)
	guardian.RelationshipToFamily = strings.TrimSpace(payload.RelationshipToFamily)

	if err := s.repo.SaveGuardian(ctx, &guardian); err != nil {
		return dto.GuardianResponse{}, err
	}
	return dto.NewGuardianResponse(guardian), nil
}

func (s *familyService) RemoveGuardian(ctx context.Context, familyID, guardianID uuid.UUID) error {
	if err := s.repo.DeleteGuardian(ctx, familyID, guardianID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuardianNotFound
		}
		return err
	}
	return nil
}

func (s *familyService) AddStudent(ctx context.Context, familyID uuid.UUID, payload dto.StudentPayload) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}
	if err := s.ensureFamily(ctx, familyID); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.buildStudent(uuid.New(), familyID, payload)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	if err := s.repo.CreateStudent(ctx, student); err != nil {
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(*student), nil
}

func (s *familyService) UpdateStudent(ctx context.Context, familyID, studentID uuid.UUID, payload dto.StudentPayload) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	if _, err := s.repo.GetStudent(ctx, familyID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	student, err := s.buildStudent(studentID, familyID, payload)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	if err := s.repo.SaveStudent(ctx, student); err != nil {
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(*student), nil
}

func (s *familyService) buildStudent(id, familyID uuid.UUID, payload dto.StudentPayload) (*models.Student, error) {
	student := &models.Student{
		ID:             id,
		FamilyID:       familyID,
		FirstName:      strings.TrimSpace(payload.FirstName),
		LastName:       strings.TrimSpace(payload.LastName),
		MiddleName:     payload.MiddleName,
		SaintName:      payload.SaintName,
		Gender:         payload.Gender,
		GradeLevel:     payload.GradeLevel,
		AmericanSchool: payload.AmericanSchool,
	}

	if payload.Notes != nil {
		clean := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Notes))
		if clean != "" {
			student.Notes = &clean
		}
	}

	if payload.DateOfBirth != nil && *payload.DateOfBirth != "" {
		parsed, err := time.Parse(time.DateOnly, *payload.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date of birth: %w", err)
		}
		student.DateOfBirth = &parsed
	}

	return student, nil
}

// RemoveStudent deletes a student along with its enrollments.
func (s *familyService) RemoveStudent(ctx context.Context, familyID, studentID uuid.UUID) error {
	if err := s.repo.DeleteStudent(ctx, familyID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	return nil
}

func (s *familyService) AddEmergencyContact(ctx context.Context, familyID uuid.UUID, payload dto.EmergencyContactPayload) (dto.EmergencyContactResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EmergencyContactResponse{}, err
	}
	if err := s.ensureFamily(ctx, familyID); err != nil {
		return dto.EmergencyContactResponse{}, err
	}

	contact := models.EmergencyContact{
		ID:                   uuid.New(),
		FamilyID:             familyID,
		Name:                 strings.TrimSpace(payload.Name),
		Phone:                strings.TrimSpace(payload.Phone),
		Email:                strings.ToLower(strings.TrimSpace(payload.Email)),
		RelationshipToFamily: strings.TrimSpace(payload.RelationshipToFamily),
	}

	if err := s.repo.CreateEmergencyContact(ctx, &contact); err != nil {
		return dto.EmergencyContactResponse{}, err
	}
	return dto.NewEmergencyContactResponse(contact), nil
}

func (s *familyService) UpdateEmergencyContact(ctx context.Context, familyID, contactID uuid.UUID, payload dto.EmergencyContactPayload) (dto.EmergencyContactResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EmergencyContactResponse{}, err
	}

	contact, err := s.repo.GetEmergencyContact(ctx, familyID, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EmergencyContactResponse{}, ErrContactNotFound
		}
		return dto.EmergencyContactResponse{}, err
	}

	contact.Name = strings.TrimSpace(payload.Name)
	contact.Phone = strings.TrimSpace(payload.Phone)
	contact.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	contact.RelationshipToFamily = strings.TrimSpace(payload.RelationshipToFamily)

	if err := s.repo.SaveEmergencyContact(ctx, &contact); err != nil {
		return dto.EmergencyContactResponse{}, err
	}
	return dto.NewEmergencyContactResponse(contact), nil
}

func (s *familyService) RemoveEmergencyContact(ctx context.Context, familyID, contactID uuid.UUID) error {
	if err := s.repo.DeleteEmergencyContact(ctx, familyID, contactID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	return nil
}

func (s *familyService) ensureFamily(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFamilyNotFound
		}
		return err
	}
	return nil
}

func (s *familyService) recordActivity(ctx context.Context, actor ActivityActor, action string, familyID uuid.UUID, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "family",
		EntityID:   familyID.String(),
		Metadata:   metadata,
	})
}
