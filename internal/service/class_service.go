package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
)

// Sentinel errors surfaced by class administration.
var (
	ErrClassNotFound       = errors.New("class not found")
	ErrProgramNotFound     = errors.New("program not found")
	ErrClassHasEnrollments = errors.New("class has enrolled students")
	ErrAlreadyEnrolled     = errors.New("student already enrolled in this class")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
)

// ClassService provides the admin surface over classes, programs and
// rosters.
type ClassService interface {
	List(ctx context.Context, filter repository.ClassFilter) ([]dto.ClassResponse, error)
	Get(ctx context.Context, id uuid.UUID) (dto.ClassResponse, error)
	GetRoster(ctx context.Context, id uuid.UUID) (dto.ClassRosterResponse, error)
	ExportRosterCSV(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	Create(ctx context.Context, req dto.ClassCreateRequest, actor ActivityActor) (dto.ClassResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ClassUpdateRequest, actor ActivityActor) (dto.ClassResponse, error)
	Delete(ctx context.Context, id uuid.UUID, actor ActivityActor) error

	Enroll(ctx context.Context, req dto.ManualEnrollmentRequest, actor ActivityActor) (dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, studentID, classID uuid.UUID, actor ActivityActor) error
	BulkEnroll(ctx context.Context, req dto.BulkEnrollmentRequest, actor ActivityActor) (dto.BulkEnrollmentResponse, error)

	ListPrograms(ctx context.Context) ([]dto.ProgramResponse, error)
	CreateProgram(ctx context.Context, name string, actor ActivityActor) (dto.ProgramResponse, error)
}

type classService struct {
	repo        repository.ClassRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
}

// NewClassService constructs the class service.
func NewClassService(repo repository.ClassRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ClassService {
	return &classService{
		repo:        repo,
		enrollments: enrollments,
		validator:   validate,
		activity:    activity,
		logger:      logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) List(ctx context.Context, filter repository.ClassFilter) ([]dto.ClassResponse, error) {
	classes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ClassResponse, 0, len(classes))
	for _, class := range classes {
		count, err := s.repo.EnrollmentCount(ctx, class.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewClassResponse(class, count))
	}
	return responses, nil
}

func (s *classService) Get(ctx context.Context, id uuid.UUID) (dto.ClassResponse, error) {
	class, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	count, err := s.repo.EnrollmentCount(ctx, id)
	if err != nil {
		return dto.ClassResponse{}, err
	}
	return dto.NewClassResponse(class, count), nil
}

func (s *classService) GetRoster(ctx context.Context, id uuid.UUID) (dto.ClassRosterResponse, error) {
	class, err := s.repo.GetRoster(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassRosterResponse{}, ErrClassNotFound
		}
		return dto.ClassRosterResponse{}, err
	}

	roster := make([]dto.RosterEntry, 0, len(class.Enrollments))
	for _, enrollment := range class.Enrollments {
		entry := dto.RosterEntry{
			EnrollmentID: enrollment.ID,
			StudentID:    enrollment.StudentID,
		}
		if enrollment.Student != nil {
			entry.StudentName = enrollment.Student.FullName()
			entry.GradeLevel = enrollment.Student.GradeLevel
		}
		roster = append(roster, entry)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].StudentName < roster[j].StudentName })

	return dto.ClassRosterResponse{
		Class:  dto.NewClassResponse(class, int64(len(class.Enrollments))),
		Roster: roster,
	}, nil
}

// ExportRosterCSV renders a class roster as CSV and returns the payload with
// a suggested filename.
func (s *classService) ExportRosterCSV(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	roster, err := s.GetRoster(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Student Name", "Grade Level", "Class", "Program"}); err != nil {
		return nil, "", err
	}
	for _, entry := range roster.Roster {
		grade := ""
		if entry.GradeLevel != nil {
			grade = strconv.Itoa(*entry.GradeLevel)
		}
		if err := writer.Write([]string{entry.StudentName, grade, roster.Class.Name, roster.Class.ProgramName}); err != nil {
			return nil, "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := strings.ReplaceAll(strings.ToLower(roster.Class.Name), " ", "_") + "_roster.csv"
	return buf.Bytes(), filename, nil
}

func (s *classService) Create(ctx context.Context, req dto.ClassCreateRequest, actor ActivityActor) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	program, err := s.repo.GetProgram(ctx, req.ProgramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrProgramNotFound
		}
		return dto.ClassResponse{}, err
	}

	class := models.Class{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(req.Name),
		ProgramID:      program.ID,
		AcademicYearID: req.AcademicYearID,
	}

	if err := s.repo.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}
	class.Program = &program

	s.recordActivity(ctx, actor, "class.created", class.ID.String(), map[string]interface{}{"name": class.Name})

	return dto.NewClassResponse(class, 0), nil
}

func (s *classService) Update(ctx context.Context, id uuid.UUID, req dto.ClassUpdateRequest, actor ActivityActor) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if req.Name != nil {
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.ProgramID != nil {
		program, err := s.repo.GetProgram(ctx, *req.ProgramID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ClassResponse{}, ErrProgramNotFound
			}
			return dto.ClassResponse{}, err
		}
		class.ProgramID = program.ID
		class.Program = &program
	}
	if req.AcademicYearID != nil {
		class.AcademicYearID = *req.AcademicYearID
	}

	if err := s.repo.Save(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	count, err := s.repo.EnrollmentCount(ctx, class.ID)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	s.recordActivity(ctx, actor, "class.updated", class.ID.String(), nil)

	return dto.NewClassResponse(class, count), nil
}

// Delete refuses to remove a class that still has students on its roster.
func (s *classService) Delete(ctx context.Context, id uuid.UUID, actor ActivityActor) error {
	count, err := s.repo.EnrollmentCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrClassHasEnrollments
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	s.recordActivity(ctx, actor, "class.deleted", id.String(), nil)
	return nil
}

func (s *classService) Enroll(ctx context.Context, req dto.ManualEnrollmentRequest, actor ActivityActor) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	class, err := s.repo.GetByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrClassNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	exists, err := s.enrollments.StudentExists(ctx, req.StudentID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if !exists {
		return dto.EnrollmentResponse{}, ErrStudentNotFound
	}

	enrolled, err := s.enrollments.Exists(ctx, req.StudentID, req.ClassID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if enrolled {
		return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
	}

	enrollment := models.Enrollment{ID: uuid.New(), StudentID: req.StudentID, ClassID: req.ClassID, Class: &class}
	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.recordActivity(ctx, actor, "enrollment.created", enrollment.ID.String(), map[string]interface{}{
		"student_id": req.StudentID.String(),
		"class_id":   req.ClassID.String(),
	})

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *classService) Unenroll(ctx context.Context, studentID, classID uuid.UUID, actor ActivityActor) error {
	if err := s.enrollments.DeleteByStudentAndClass(ctx, studentID, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	s.recordActivity(ctx, actor, "enrollment.deleted", studentID.String(), map[string]interface{}{
		"class_id": classID.String(),
	})
	return nil
}

// BulkEnroll enrolls every named student into the class, collecting per
// student failures instead of aborting the batch.
func (s *classService) BulkEnroll(ctx context.Context, req dto.BulkEnrollmentRequest, actor ActivityActor) (dto.BulkEnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BulkEnrollmentResponse{}, err
	}

	if _, err := s.repo.GetByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BulkEnrollmentResponse{}, ErrClassNotFound
		}
		return dto.BulkEnrollmentResponse{}, err
	}

	response := dto.BulkEnrollmentResponse{Failures: make([]dto.BulkEnrollmentFailure, 0)}
	for _, studentID := range req.StudentIDs {
		_, err := s.Enroll(ctx, dto.ManualEnrollmentRequest{StudentID: studentID, ClassID: req.ClassID}, actor)
		switch {
		case err == nil:
			response.EnrolledCount++
		case errors.Is(err, ErrStudentNotFound):
			response.Failures = append(response.Failures, dto.BulkEnrollmentFailure{StudentID: studentID, Reason: "student not found"})
		case errors.Is(err, ErrAlreadyEnrolled):
			response.Failures = append(response.Failures, dto.BulkEnrollmentFailure{StudentID: studentID, Reason: "already enrolled"})
		default:
			return dto.BulkEnrollmentResponse{}, err
		}
	}

	return response, nil
}

func (s *classService) ListPrograms(ctx context.Context) ([]dto.ProgramResponse, error) {
	programs, err := s.repo.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ProgramResponse, 0, len(programs))
	for _, program := range programs {
		responses = append(responses, dto.ProgramResponse{ID: program.ID, Name: program.Name})
	}
	return responses, nil
}

func (s *classService) CreateProgram(ctx context.Context, name string, actor ActivityActor) (dto.ProgramResponse, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return dto.ProgramResponse{}, errors.New("program name is required")
	}

	program := models.Program{Name: trimmed}
	if err := s.repo.CreateProgram(ctx, &program); err != nil {
		return dto.ProgramResponse{}, err
	}

	s.recordActivity(ctx, actor, "program.created", strconv.FormatUint(uint64(program.ID), 10), map[string]interface{}{"name": program.Name})

	return dto.ProgramResponse{ID: program.ID, Name: program.Name}, nil
}

func (s *classService) recordActivity(ctx context.Context, actor ActivityActor, action, entityID string, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	entityType := "class"
	if strings.HasPrefix(action, "enrollment.") {
		entityType = "enrollment"
	} else if strings.HasPrefix(action, "program.") {
		entityType = "program"
	}
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	})
}
