package dto

import (
	"github.com/google/uuid"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// ClassCreateRequest creates a class for a program and school year.
type ClassCreateRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=255"`
	ProgramID      uint   `json:"program_id" validate:"required"`
	AcademicYearID uint   `json:"academic_year_id" validate:"required"`
}

// ClassUpdateRequest partially updates a class.
type ClassUpdateRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=255"`
	ProgramID      *uint   `json:"program_id"`
	AcademicYearID *uint   `json:"academic_year_id"`
}

// ClassResponse serializes a class with its enrollment count.
type ClassResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	ProgramID       uint      `json:"program_id"`
	ProgramName     string    `json:"program_name"`
	AcademicYearID  uint      `json:"academic_year_id"`
	EnrollmentCount int64     `json:"enrollment_count"`
}

// RosterEntry is one enrolled student on a class roster.
type RosterEntry struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	StudentID    uuid.UUID `json:"student_id"`
	StudentName  string    `json:"student_name"`
	GradeLevel   *int      `json:"grade_level"`
}

// ClassRosterResponse serializes a class together with its roster.
type ClassRosterResponse struct {
	Class  ClassResponse `json:"class"`
	Roster []RosterEntry `json:"roster"`
}

// ManualEnrollmentRequest enrolls one student into one class by hand.
type ManualEnrollmentRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	ClassID   uuid.UUID `json:"class_id" validate:"required"`
}

// BulkEnrollmentRequest enrolls many students into one class.
type BulkEnrollmentRequest struct {
	ClassID    uuid.UUID   `json:"class_id" validate:"required"`
	StudentIDs []uuid.UUID `json:"student_ids" validate:"required,min=1"`
}

// BulkEnrollmentFailure reports one student that could not be enrolled.
type BulkEnrollmentFailure struct {
	StudentID uuid.UUID `json:"student_id"`
	Reason    string    `json:"reason"`
}

// BulkEnrollmentResponse reports the outcome of a bulk enrollment.
type BulkEnrollmentResponse struct {
	EnrolledCount int                     `json:"enrolled_count"`
	Failures      []BulkEnrollmentFailure `json:"failures"`
}

// ProgramResponse serializes a program.
type ProgramResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NewClassResponse maps a class model and its enrollment count to the
// response shape.
func NewClassResponse(class models.Class, enrollmentCount int64) ClassResponse {
	response := ClassResponse{
		ID:              class.ID,
		Name:            class.Name,
		ProgramID:       class.ProgramID,
		AcademicYearID:  class.AcademicYearID,
		EnrollmentCount: enrollmentCount,
	}
	if class.Program != nil {
		response.ProgramName = class.Program.Name
	}
	return response
}
