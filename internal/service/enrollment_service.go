package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/observability"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
)

// Sentinel errors surfaced by the enrollment portal.
var (
	ErrFamilyNotFound   = errors.New("family not found")
	ErrEnrollmentClosed = errors.New("enrollment is closed for this school year")
	ErrNoEnrollmentYear = errors.New("no school year available for enrollment")
	ErrEmptyFamilyName  = errors.New("family name is required")
)

// Program name variants matched when routing a class selection to a class.
// The portal stores levels per program kind, never per class id.
var (
	giaoLyVariants  = []string{"giao ly", "giáo lý"}
	vietNguVariants = []string{"viet ngu", "việt ngữ"}
)

func matchesProgramVariant(name string, variants []string) bool {
	lowered := strings.ToLower(strings.TrimSpace(name))
	for _, variant := range variants {
		if strings.Contains(lowered, variant) {
			return true
		}
	}
	return false
}

// EnrollmentService drives the public enrollment portal: family lookup, the
// class catalog, grade-progression suggestions and the submission itself.
type EnrollmentService interface {
	Submit(ctx context.Context, req dto.EnrollmentSubmissionRequest) (dto.EnrollmentSubmissionResponse, error)
	LookupFamilyByEmail(ctx context.Context, email string) (dto.FamilyLookupResponse, error)
	GetFamily(ctx context.Context, id uuid.UUID) (dto.FamilyResponse, error)
	CurrentYear(ctx context.Context) (dto.EnrollmentYearResponse, error)
	ListClasses(ctx context.Context, yearID *uint) (dto.EnrollmentClassCatalog, error)
	SuggestedEnrollments(ctx context.Context, familyID uuid.UUID) (dto.SuggestedEnrollmentsResponse, error)
}

type enrollmentService struct {
	store     repository.EnrollmentStore
	families  repository.FamilyRepository
	years     SchoolYearService
	events    EventPublisher
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(store repository.EnrollmentStore, families repository.FamilyRepository, years SchoolYearService, events EventPublisher, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		store:     store,
		families:  families,
		years:     years,
		events:    events,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		tracer:    otel.Tracer("github.com/nhatminh-dev/lavang-api/internal/service/enrollment"),
		logger:    logger.With().Str("component", "enrollment_service").Logger(),
	}
}

// Submit persists one family snapshot and its class selections for a school
// year. The whole submission commits or rolls back as a single transaction;
// child collections are reconciled against the submitted set and enrollments
// for the year are fully replaced.
func (s *enrollmentService) Submit(ctx context.Context, req dto.EnrollmentSubmissionRequest) (dto.EnrollmentSubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		observability.EnrollmentSubmissions().WithLabelValues("invalid").Inc()
		return dto.EnrollmentSubmissionResponse{}, err
	}
	if strings.TrimSpace(req.FamilyInfo.FamilyName) == "" {
		observability.EnrollmentSubmissions().WithLabelValues("invalid").Inc()
		return dto.EnrollmentSubmissionResponse{}, ErrEmptyFamilyName
	}

	spanCtx, span := s.tracer.Start(ctx, "enrollment.submit", trace.WithAttributes(
		attribute.Int("enrollment.academic_year_id", int(req.AcademicYearID)),
		attribute.Int("enrollment.students", len(req.Students)),
	))
	defer span.End()

	start := time.Now()

	var (
		familyID      uuid.UUID
		yearName      string
		enrollmentIDs []uuid.UUID
	)

	err := s.store.Transaction(spanCtx, func(store repository.EnrollmentStore) error {
		year, err := store.FindAcademicYear(spanCtx, req.AcademicYearID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSchoolYearNotFound
			}
			return err
		}
		yearName = year.Name

		family, err := s.resolveFamily(spanCtx, store, req)
		if err != nil {
			return err
		}
		familyID = family.ID

		if _, err := s.reconcileGuardians(spanCtx, store, family.ID, req.Guardians); err != nil {
			return err
		}

		studentOutcome, err := s.reconcileStudents(spanCtx, store, family.ID, req.Students)
		if err != nil {
			return err
		}

		if _, err := s.reconcileContacts(spanCtx, store, family.ID, req.EmergencyContacts); err != nil {
			return err
		}

		classes, err := store.ListClassesForYear(spanCtx, year.ID)
		if err != nil {
			return err
		}

		enrollmentIDs, err = s.replaceEnrollments(spanCtx, store, studentOutcome, req.ClassSelections, classes)
		return err
	})

	observability.EnrollmentSubmissionDuration().Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		observability.EnrollmentSubmissions().WithLabelValues("error").Inc()
		return dto.EnrollmentSubmissionResponse{}, err
	}

	observability.EnrollmentSubmissions().WithLabelValues("success").Inc()
	s.logger.Info().
		Str("family_id", familyID.String()).
		Str("academic_year", yearName).
		Int("enrollments", len(enrollmentIDs)).
		Msg("enrollment submission committed")

	if s.events != nil {
		if err := s.events.PublishEnrollment(ctx, EnrollmentEvent{
			FamilyID:      familyID,
			AcademicYear:  yearName,
			EnrollmentIDs: enrollmentIDs,
		}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish enrollment event")
		}
	}
	if s.activity != nil {
		_, _ = s.activity.Record(ctx, ActivityEntry{
			ActorRole:  "portal",
			Action:     "enrollment.submitted",
			EntityType: "family",
			EntityID:   familyID.String(),
			Metadata: map[string]interface{}{
				"academic_year": yearName,
				"enrollments":   len(enrollmentIDs),
			},
		})
	}

	return dto.EnrollmentSubmissionResponse{
		Success:       true,
		FamilyID:      familyID,
		EnrollmentIDs: enrollmentIDs,
		Message:       fmt.Sprintf("Enrollment for %s submitted", yearName),
	}, nil
}

// resolveFamily loads the family named by the request or creates a new one,
// then applies the submitted household fields.
func (s *enrollmentService) resolveFamily(ctx context.Context, store repository.EnrollmentStore, req dto.EnrollmentSubmissionRequest) (models.Family, error) {
	if req.FamilyID != nil {
		family, err := store.FindFamily(ctx, *req.FamilyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Family{}, ErrFamilyNotFound
			}
			return models.Family{}, err
		}

		s.applyFamilyInfo(&family, req.FamilyInfo)
		if err := store.SaveFamily(ctx, &family); err != nil {
			return models.Family{}, err
		}
		return family, nil
	}

	family := models.Family{ID: uuid.New()}
	s.applyFamilyInfo(&family, req.FamilyInfo)
	if err := store.CreateFamily(ctx, &family); err != nil {
		return models.Family{}, err
	}
	return family, nil
}

func (s *enrollmentService) applyFamilyInfo(family *models.Family, info dto.FamilyInfo) {
	family.FamilyName = strings.TrimSpace(info.FamilyName)
	family.Address = strings.TrimSpace(info.Address)
	family.City = strings.TrimSpace(info.City)
	family.State = strings.TrimSpace(info.State)
	family.ZipCode = strings.TrimSpace(info.ZipCode)
	family.DioceseID = info.DioceseID
}

func (s *enrollmentService) reconcileGuardians(ctx context.Context, store repository.EnrollmentStore, familyID uuid.UUID, submitted []dto.GuardianSubmission) (ReconcileOutcome, error) {
	existing, err := store.ListGuardianIDs(ctx, familyID)
	if err != nil {
		return ReconcileOutcome{}, err
	}

	items := make([]SubmittedItem[dto.GuardianSubmission], 0, len(submitted))
	for _, guardian := range submitted {
		items = append(items, SubmittedItem[dto.GuardianSubmission]{ClientID: guardian.ID, Fields: guardian})
	}

	return ReconcileSet(ctx, existing, items, ReconcileHooks[dto.GuardianSubmission]{
		Update: func(ctx context.Context, id uuid.UUID, fields dto.GuardianSubmission) error {
			return store.SaveGuardian(ctx, s.guardianModel(id, familyID, fields))
		},
		Insert: func(ctx context.Context, fields dto.GuardianSubmission) (uuid.UUID, error) {
			id := uuid.New()
			return id, store.SaveGuardian(ctx, s.guardianModel(id, familyID, fields))
		},
		Delete: store.DeleteGuardian,
	})
}

func (s *enrollmentService) guardianModel(id, familyID uuid.UUID, fields dto.GuardianSubmission) *models.Guardian {
	return &models.Guardian{
		ID:                   id,
		FamilyID:             familyID,
		Name:                 strings.TrimSpace(fields.Name),
		Email:                strings.ToLower(strings.TrimSpace(fields.Email)),
		Phone:                strings.TrimSpace(fields.Phone),
		RelationshipToFamily: strings.TrimSpace(fields.RelationshipToFamily),
	}
}

func (s *enrollmentService) reconcileStudents(ctx context.Context, store repository.EnrollmentStore, familyID uuid.UUID, submitted []dto.StudentSubmission) (ReconcileOutcome, error) {
	existing, err := store.ListStudentIDs(ctx, familyID)
	if err != nil {
		return ReconcileOutcome{}, err
	}

	items := make([]SubmittedItem[dto.StudentSubmission], 0, len(submitted))
	for _, student := range submitted {
		items = append(items, SubmittedItem[dto.StudentSubmission]{ClientID: student.ID, Fields: student})
	}

	return ReconcileSet(ctx, existing, items, ReconcileHooks[dto.StudentSubmission]{
		Update: func(ctx context.Context, id uuid.UUID, fields dto.StudentSubmission) error {
			student, err := s.studentModel(id, familyID, fields)
			if err != nil {
				return err
			}
			return store.SaveStudent(ctx, student)
		},
		Insert: func(ctx context.Context, fields dto.StudentSubmission) (uuid.UUID, error) {
			id := uuid.New()
			student, err := s.studentModel(id, familyID, fields)
			if err != nil {
				return uuid.Nil, err
			}
			return id, store.SaveStudent(ctx, student)
		},
		Delete: store.DeleteStudent,
	})
}

func (s *enrollmentService) studentModel(id, familyID uuid.UUID, fields dto.StudentSubmission) (*models.Student, error) {
	student := &models.Student{
		ID:             id,
		FamilyID:       familyID,
		FirstName:      strings.TrimSpace(fields.FirstName),
		LastName:       strings.TrimSpace(fields.LastName),
		MiddleName:     fields.MiddleName,
		SaintName:      fields.SaintName,
		Gender:         fields.Gender,
		GradeLevel:     fields.GradeLevel,
		AmericanSchool: fields.AmericanSchool,
		Notes:          s.sanitizeNotes(fields.Notes, fields.SpecialNeeds),
	}

	if fields.DateOfBirth != nil && *fields.DateOfBirth != "" {
		parsed, err := time.Parse(time.DateOnly, *fields.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date of birth: %w", err)
		}
		student.DateOfBirth = &parsed
	}

	return student, nil
}

// sanitizeNotes strips markup from the free-text notes. Older portal clients
// send special_needs instead of notes; notes wins when both are present.
func (s *enrollmentService) sanitizeNotes(notes, specialNeeds *string) *string {
	raw := notes
	if raw == nil || strings.TrimSpace(*raw) == "" {
		raw = specialNeeds
	}
	if raw == nil {
		return nil
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(*raw))
	if clean == "" {
		return nil
	}
	return &clean
}

func (s *enrollmentService) reconcileContacts(ctx context.Context, store repository.EnrollmentStore, familyID uuid.UUID, submitted []dto.EmergencyContactSubmission) (ReconcileOutcome, error) {
	existing, err := store.ListEmergencyContactIDs(ctx, familyID)
	if err != nil {
		return ReconcileOutcome{}, err
	}

	items := make([]SubmittedItem[dto.EmergencyContactSubmission], 0, len(submitted))
	for _, contact := range submitted {
		items = append(items, SubmittedItem[dto.EmergencyContactSubmission]{ClientID: contact.ID, Fields: contact})
	}

	return ReconcileSet(ctx, existing, items, ReconcileHooks[dto.EmergencyContactSubmission]{
		Update: func(ctx context.Context, id uuid.UUID, fields dto.EmergencyContactSubmission) error {
			return store.SaveEmergencyContact(ctx, s.contactModel(id, familyID, fields))
		},
		Insert: func(ctx context.Context, fields dto.EmergencyContactSubmission) (uuid.UUID, error) {
			id := uuid.New()
			return id, store.SaveEmergencyContact(ctx, s.contactModel(id, familyID, fields))
		},
		Delete: store.DeleteEmergencyContact,
	})
}

func (s *enrollmentService) contactModel(id, familyID uuid.UUID, fields dto.EmergencyContactSubmission) *models.EmergencyContact {
	return &models.EmergencyContact{
		ID:                   id,
		FamilyID:             familyID,
		Name:                 strings.TrimSpace(fields.Name),
		Phone:                strings.TrimSpace(fields.Phone),
		Email:                strings.ToLower(strings.TrimSpace(fields.Email)),
		RelationshipToFamily: strings.TrimSpace(fields.RelationshipToFamily),
	}
}

// classIndex routes class selections. Selections name a program kind and a
// level, so classes are indexed by both.
type classIndex struct {
	giaoLy  map[int]models.Class
	vietNgu map[int]models.Class
}

func buildClassIndex(classes []models.Class) classIndex {
	index := classIndex{
		giaoLy:  make(map[int]models.Class),
		vietNgu: make(map[int]models.Class),
	}

	for _, class := range classes {
		level, ok := ParseClassLevel(class.Name)
		if !ok || level == 0 {
			continue
		}
		if class.Program == nil {
			continue
		}

		switch {
		case matchesProgramVariant(class.Program.Name, giaoLyVariants) || matchesProgramVariant(class.Name, giaoLyVariants):
			index.giaoLy[level] = class
		case matchesProgramVariant(class.Program.Name, vietNguVariants) || matchesProgramVariant(class.Name, vietNguVariants):
			index.vietNgu[level] = class
		}
	}

	return index
}

// replaceEnrollments clears the family's enrollments for the year and
// recreates them from the submitted selections. Selections that name an
// unresolvable student or a level with no class are skipped without failing
// the submission.
func (s *enrollmentService) replaceEnrollments(ctx context.Context, store repository.EnrollmentStore, students ReconcileOutcome, selections []dto.ClassSelection, classes []models.Class) ([]uuid.UUID, error) {
	studentIDs := make([]uuid.UUID, 0, len(students.Kept)+len(students.Inserted))
	studentSet := make(map[uuid.UUID]struct{})
	for _, id := range append(append([]uuid.UUID{}, students.Kept...), students.Inserted...) {
		studentIDs = append(studentIDs, id)
		studentSet[id] = struct{}{}
	}

	classIDs := make([]uuid.UUID, 0, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ID)
	}

	if err := store.DeleteEnrollments(ctx, studentIDs, classIDs); err != nil {
		return nil, err
	}

	index := buildClassIndex(classes)
	enrollmentIDs := make([]uuid.UUID, 0, len(selections)*2)
	seen := make(map[uuid.UUID]map[uuid.UUID]struct{})

	for _, selection := range selections {
		studentID, ok := s.resolveSelectionStudent(selection.StudentID, students, studentSet)
		if !ok {
			s.logger.Debug().Str("student_id", selection.StudentID).Msg("skipping selection for unresolvable student")
			continue
		}

		if selection.GiaoLyLevel != nil {
			if class, exists := index.giaoLy[*selection.GiaoLyLevel]; exists {
				id, err := s.createEnrollment(ctx, store, studentID, class.ID, seen)
				if err != nil {
					return nil, err
				}
				if id != uuid.Nil {
					enrollmentIDs = append(enrollmentIDs, id)
				}
			}
		}

		if selection.VietNguLevel != nil {
			if class, exists := index.vietNgu[*selection.VietNguLevel]; exists {
				id, err := s.createEnrollment(ctx, store, studentID, class.ID, seen)
				if err != nil {
					return nil, err
				}
				if id != uuid.Nil {
					enrollmentIDs = append(enrollmentIDs, id)
				}
			}
		}
	}

	return enrollmentIDs, nil
}

// resolveSelectionStudent maps a selection's student reference, placeholder
// or durable uuid, to a student persisted in this submission.
func (s *enrollmentService) resolveSelectionStudent(raw string, students ReconcileOutcome, studentSet map[uuid.UUID]struct{}) (uuid.UUID, bool) {
	if id, ok := students.ClientIDs[raw]; ok {
		return id, true
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	if _, ok := studentSet[id]; !ok {
		return uuid.Nil, false
	}
	return id, true
}

func (s *enrollmentService) createEnrollment(ctx context.Context, store repository.EnrollmentStore, studentID, classID uuid.UUID, seen map[uuid.UUID]map[uuid.UUID]struct{}) (uuid.UUID, error) {
	if classes, ok := seen[studentID]; ok {
		if _, dup := classes[classID]; dup {
			return uuid.Nil, nil
		}
	} else {
		seen[studentID] = make(map[uuid.UUID]struct{})
	}
	seen[studentID][classID] = struct{}{}

	enrollment := models.Enrollment{ID: uuid.New(), StudentID: studentID, ClassID: classID}
	if err := store.CreateEnrollment(ctx, &enrollment); err != nil {
		return uuid.Nil, err
	}
	return enrollment.ID, nil
}

// LookupFamilyByEmail answers the portal's returning-family check.
func (s *enrollmentService) LookupFamilyByEmail(ctx context.Context, email string) (dto.FamilyLookupResponse, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return dto.FamilyLookupResponse{}, errors.New("email is required")
	}

	guardian, err := s.families.GetGuardianByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FamilyLookupResponse{IsExistingFamily: false}, nil
		}
		return dto.FamilyLookupResponse{}, err
	}

	family, err := s.families.GetByID(ctx, guardian.FamilyID)
	if err != nil {
		return dto.FamilyLookupResponse{}, err
	}

	familyID := family.ID
	familyName := family.FamilyName
	guardianName := guardian.Name
	return dto.FamilyLookupResponse{
		IsExistingFamily: true,
		FamilyID:         &familyID,
		FamilyName:       &familyName,
		GuardianName:     &guardianName,
	}, nil
}

// GetFamily returns the full family graph used to prefill the portal form.
func (s *enrollmentService) GetFamily(ctx context.Context, id uuid.UUID) (dto.FamilyResponse, error) {
	family, err := s.families.GetGraph(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FamilyResponse{}, ErrFamilyNotFound
		}
		return dto.FamilyResponse{}, err
	}

	return dto.NewFamilyResponse(family), nil
}

// CurrentYear returns the school year the portal enrolls into: the active
// year, or the newest one when no year is active. The portal only loads when
// that year accepts enrollments.
func (s *enrollmentService) CurrentYear(ctx context.Context) (dto.EnrollmentYearResponse, error) {
	year, err := s.years.ActiveOrLatest(ctx)
	if err != nil {
		if errors.Is(err, ErrSchoolYearNotFound) {
			return dto.EnrollmentYearResponse{}, ErrNoEnrollmentYear
		}
		return dto.EnrollmentYearResponse{}, err
	}
	if !year.EnrollmentOpen {
		return dto.EnrollmentYearResponse{}, ErrEnrollmentClosed
	}

	return dto.EnrollmentYearResponse{
		ID:             year.ID,
		Name:           year.Name,
		IsCurrent:      year.IsCurrent,
		EnrollmentOpen: year.EnrollmentOpen,
		StartYear:      year.StartYear,
		EndYear:        year.EndYear,
	}, nil
}

// ListClasses returns the portal class catalog for a year, defaulting to the
// current enrollment year.
func (s *enrollmentService) ListClasses(ctx context.Context, yearID *uint) (dto.EnrollmentClassCatalog, error) {
	targetYear := uint(0)
	if yearID != nil {
		targetYear = *yearID
	} else {
		year, err := s.years.ActiveOrLatest(ctx)
		if err != nil {
			if errors.Is(err, ErrSchoolYearNotFound) {
				return dto.EnrollmentClassCatalog{}, ErrNoEnrollmentYear
			}
			return dto.EnrollmentClassCatalog{}, err
		}
		targetYear = year.ID
	}

	classes, err := s.store.ListClassesForYear(ctx, targetYear)
	if err != nil {
		return dto.EnrollmentClassCatalog{}, err
	}

	catalog := dto.EnrollmentClassCatalog{
		Classes:          make([]dto.EnrollmentClassResponse, 0, len(classes)),
		GroupedByProgram: make(map[string][]dto.EnrollmentClassResponse),
	}

	for _, class := range classes {
		programName := ""
		if class.Program != nil {
			programName = class.Program.Name
		}
		entry := dto.EnrollmentClassResponse{
			ID:             class.ID,
			Name:           class.Name,
			ProgramID:      class.ProgramID,
			ProgramName:    programName,
			AcademicYearID: class.AcademicYearID,
		}
		catalog.Classes = append(catalog.Classes, entry)
		catalog.GroupedByProgram[programName] = append(catalog.GroupedByProgram[programName], entry)
	}

	return catalog, nil
}

// SuggestedEnrollments proposes next-level classes for a family's students
// based on their prior-year enrollments. A student in "Giao Ly 3" last year
// is suggested "Giao Ly 4" when that class exists in the current year;
// final-level classes produce no suggestion.
func (s *enrollmentService) SuggestedEnrollments(ctx context.Context, familyID uuid.UUID) (dto.SuggestedEnrollmentsResponse, error) {
	family, err := s.families.GetGraph(ctx, familyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SuggestedEnrollmentsResponse{}, ErrFamilyNotFound
		}
		return dto.SuggestedEnrollmentsResponse{}, err
	}

	year, err := s.years.ActiveOrLatest(ctx)
	if err != nil {
		if errors.Is(err, ErrSchoolYearNotFound) {
			return dto.SuggestedEnrollmentsResponse{}, ErrNoEnrollmentYear
		}
		return dto.SuggestedEnrollmentsResponse{}, err
	}

	classes, err := s.store.ListClassesForYear(ctx, year.ID)
	if err != nil {
		return dto.SuggestedEnrollmentsResponse{}, err
	}

	byName := make(map[string]models.Class, len(classes))
	for _, class := range classes {
		byName[class.Name] = class
	}

	response := dto.SuggestedEnrollmentsResponse{
		FamilyID:             family.ID,
		AcademicYearID:       year.ID,
		AcademicYearName:     year.Name,
		SuggestedEnrollments: make([]dto.StudentSuggestions, 0, len(family.Students)),
	}

	for _, student := range family.Students {
		suggestions := dto.StudentSuggestions{
			StudentID:        student.ID,
			StudentName:      student.FullName(),
			SuggestedClasses: make([]dto.SuggestedClass, 0, 2),
		}

		for _, enrollment := range student.Enrollments {
			if enrollment.Class == nil || enrollment.Class.AcademicYearID == year.ID {
				continue
			}

			nextName, ok := NextClassName(enrollment.Class.Name)
			if !ok {
				continue
			}

			class, exists := byName[nextName]
			if !exists {
				continue
			}

			programName := ""
			if class.Program != nil {
				programName = class.Program.Name
			}
			suggestions.SuggestedClasses = append(suggestions.SuggestedClasses, dto.SuggestedClass{
				ClassID:           class.ID,
				ClassName:         class.Name,
				ProgramName:       programName,
				PreviousClassName: enrollment.Class.Name,
				IsAutoSuggested:   true,
			})
		}

		response.SuggestedEnrollments = append(response.SuggestedEnrollments, suggestions)
	}

	return response, nil
}
