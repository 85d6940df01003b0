package dto

import (
	"github.com/google/uuid"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// GuardianSubmission is one guardian in an enrollment submission. ID may be
// a durable uuid (existing guardian) or a client placeholder for a new one.
type GuardianSubmission struct {
	ID                   string `json:"id"`
	Name                 string `json:"name" validate:"required,min=1,max=255"`
	Email                string `json:"email" validate:"omitempty,email"`
	Phone                string `json:"phone" validate:"max=32"`
	RelationshipToFamily string `json:"relationship_to_family" validate:"max=64"`
}

// StudentSubmission is one student in an enrollment submission.
type StudentSubmission struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"first_name" validate:"required,min=1,max=128"`
	LastName       string  `json:"last_name" validate:"required,min=1,max=128"`
	MiddleName     *string `json:"middle_name"`
	SaintName      *string `json:"saint_name"`
	DateOfBirth    *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender         *string `json:"gender"`
	GradeLevel     *int    `json:"grade_level" validate:"omitempty,min=0,max=12"`
	AmericanSchool *string `json:"american_school"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
	SpecialNeeds   *string `json:"special_needs" validate:"omitempty,max=2000"`
}

// EmergencyContactSubmission is one emergency contact in a submission.
type EmergencyContactSubmission struct {
	ID                   string `json:"id"`
	Name                 string `json:"name" validate:"required,min=1,max=255"`
	Phone                string `json:"phone" validate:"required,max=32"`
	Email                string `json:"email" validate:"omitempty,email"`
	RelationshipToFamily string `json:"relationship_to_family" validate:"max=64"`
}

// ClassSelection pairs one submitted student with the class levels chosen
// for each program kind. StudentID may be a placeholder matching a student
// in the same submission or a durable student uuid.
type ClassSelection struct {
	StudentID        string `json:"student_id" validate:"required"`
	GiaoLyLevel      *int   `json:"giao_ly_level" validate:"omitempty,min=1,max=9"`
	VietNguLevel     *int   `json:"viet_ngu_level" validate:"omitempty,min=1,max=9"`
	GiaoLyCompleted  bool   `json:"giao_ly_completed"`
	VietNguCompleted bool   `json:"viet_ngu_completed"`
}

// EnrollmentSubmissionRequest is the single snapshot of a family submitted
// by the enrollment portal.
type EnrollmentSubmissionRequest struct {
	FamilyID          *uuid.UUID                   `json:"family_id"`
	FamilyInfo        FamilyInfo                   `json:"family_info" validate:"required"`
	Guardians         []GuardianSubmission         `json:"guardians" validate:"dive"`
	Students          []StudentSubmission          `json:"students" validate:"dive"`
	EmergencyContacts []EmergencyContactSubmission `json:"emergency_contacts" validate:"dive"`
	ClassSelections   []ClassSelection             `json:"class_selections" validate:"dive"`
	AcademicYearID    uint                         `json:"academic_year_id" validate:"required"`
}

// EnrollmentSubmissionResponse reports the outcome of a submission.
type EnrollmentSubmissionResponse struct {
	Success       bool        `json:"success"`
	FamilyID      uuid.UUID   `json:"family_id"`
	EnrollmentIDs []uuid.UUID `json:"enrollment_ids"`
	Message       string      `json:"message"`
}

// FamilyLookupResponse answers the portal's lookup-by-guardian-email query.
type FamilyLookupResponse struct {
	IsExistingFamily bool       `json:"is_existing_family"`
	FamilyID         *uuid.UUID `json:"family_id"`
	FamilyName       *string    `json:"family_name"`
	GuardianName     *string    `json:"guardian_name"`
}

// EnrollmentYearResponse is the school year the portal enrolls into.
type EnrollmentYearResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	IsCurrent      bool   `json:"is_current"`
	EnrollmentOpen bool   `json:"enrollment_open"`
	StartYear      int    `json:"start_year"`
	EndYear        int    `json:"end_year"`
}

// EnrollmentClassResponse is one class in the portal catalog.
type EnrollmentClassResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ProgramID      uint      `json:"program_id"`
	ProgramName    string    `json:"program_name"`
	AcademicYearID uint      `json:"academic_year_id"`
}

// EnrollmentClassCatalog lists classes flat and grouped by program.
type EnrollmentClassCatalog struct {
	Classes          []EnrollmentClassResponse            `json:"classes"`
	GroupedByProgram map[string][]EnrollmentClassResponse `json:"grouped_by_program"`
}

// SuggestedClass is one grade-progression suggestion for a student.
type SuggestedClass struct {
	ClassID           uuid.UUID `json:"class_id"`
	ClassName         string    `json:"class_name"`
	ProgramName       string    `json:"program_name"`
	PreviousClassName string    `json:"previous_class_name"`
	IsAutoSuggested   bool      `json:"is_auto_suggested"`
}

// StudentSuggestions groups the suggested classes for one student.
type StudentSuggestions struct {
	StudentID        uuid.UUID        `json:"student_id"`
	StudentName      string           `json:"student_name"`
	SuggestedClasses []SuggestedClass `json:"suggested_classes"`
}

// SuggestedEnrollmentsResponse carries grade-progression suggestions for a
// whole family.
type SuggestedEnrollmentsResponse struct {
	FamilyID             uuid.UUID            `json:"family_id"`
	AcademicYearID       uint                 `json:"academic_year_id"`
	AcademicYearName     string               `json:"academic_year_name"`
	SuggestedEnrollments []StudentSuggestions `json:"suggested_enrollments"`
}

// EnrollmentResponse serializes one student-class link.
type EnrollmentResponse struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	ClassID   uuid.UUID `json:"class_id"`
	ClassName string    `json:"class_name,omitempty"`
	Program   string    `json:"program_name,omitempty"`
}

// NewEnrollmentResponse maps an enrollment model to its response shape.
func NewEnrollmentResponse(enrollment models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:        enrollment.ID,
		StudentID: enrollment.StudentID,
		ClassID:   enrollment.ClassID,
	}
	if enrollment.Class != nil {
		response.ClassName = enrollment.Class.Name
		if enrollment.Class.Program != nil {
			response.Program = enrollment.Class.Program.Name
		}
	}
	return response
}
