package dto

import (
	"time"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// SchoolYearCreateRequest creates a new school year. Start/end years are
// derived from the "YYYY-YYYY" name when omitted.
type SchoolYearCreateRequest struct {
	Name           string  `json:"name" validate:"required,min=9,max=16"`
	StartYear      *int    `json:"start_year" validate:"omitempty,min=2000,max=2100"`
	EndYear        *int    `json:"end_year" validate:"omitempty,min=2000,max=2100"`
	IsCurrent      bool    `json:"is_current"`
	IsActive       bool    `json:"is_active"`
	EnrollmentOpen *bool   `json:"enrollment_open"`
	TransitionDate *string `json:"transition_date" validate:"omitempty,datetime=2006-01-02"`
}

// SchoolYearUpdateRequest partially updates a school year.
type SchoolYearUpdateRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=9,max=16"`
	StartYear      *int    `json:"start_year" validate:"omitempty,min=2000,max=2100"`
	EndYear        *int    `json:"end_year" validate:"omitempty,min=2000,max=2100"`
	IsActive       *bool   `json:"is_active"`
	EnrollmentOpen *bool   `json:"enrollment_open"`
	TransitionDate *string `json:"transition_date" validate:"omitempty,datetime=2006-01-02"`
}

// SchoolYearResponse serializes a school year with its derived status and
// usage statistics.
type SchoolYearResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	StartYear      int       `json:"start_year"`
	EndYear        int       `json:"end_year"`
	IsCurrent      bool      `json:"is_current"`
	IsActive       bool      `json:"is_active"`
	EnrollmentOpen bool      `json:"enrollment_open"`
	TransitionDate *string   `json:"transition_date"`
	CreatedAt      time.Time `json:"created_at"`
	Status         string    `json:"status"`
	ClassCount     int64     `json:"class_count"`
	EnrolledCount  int64     `json:"enrolled_students_count"`
}

// SchoolYearTransitionRequest names the year to activate.
type SchoolYearTransitionRequest struct {
	NewActiveYearID uint `json:"new_active_year_id" validate:"required"`
}

// SchoolYearTransitionResponse reports the active-year swap.
type SchoolYearTransitionResponse struct {
	Success              bool   `json:"success"`
	Message              string `json:"message"`
	PreviousActiveYearID *uint  `json:"previous_active_year_id"`
	NewActiveYearID      uint   `json:"new_active_year_id"`
}

// AutoCreateCheckResponse reports whether next year's record should exist.
type AutoCreateCheckResponse struct {
	ShouldCreate           bool   `json:"should_create"`
	Reason                 string `json:"reason"`
	SuggestedName          string `json:"suggested_name,omitempty"`
	SuggestedStartYear     int    `json:"suggested_start_year,omitempty"`
	SuggestedEndYear       int    `json:"suggested_end_year,omitempty"`
	SuggestedTransitionDay string `json:"suggested_transition_date,omitempty"`
	ExistingYearID         *uint  `json:"existing_year_id,omitempty"`
}

// TransitionCheckResponse reports whether a pending year's transition date
// has passed.
type TransitionCheckResponse struct {
	ShouldTransition    bool    `json:"should_transition"`
	Reason              string  `json:"reason"`
	YearID              *uint   `json:"year_id,omitempty"`
	YearName            string  `json:"year_name,omitempty"`
	TransitionDate      *string `json:"transition_date,omitempty"`
	DaysUntilTransition *int    `json:"days_until_transition,omitempty"`
}

// NewSchoolYearResponse maps a year model plus derived status and stats to
// its response shape.
func NewSchoolYearResponse(year models.AcademicYear, status string, classCount, enrolledCount int64) SchoolYearResponse {
	response := SchoolYearResponse{
		ID:             year.ID,
		Name:           year.Name,
		StartYear:      year.StartYear,
		EndYear:        year.EndYear,
		IsCurrent:      year.IsCurrent,
		IsActive:       year.IsActive,
		EnrollmentOpen: year.EnrollmentOpen,
		CreatedAt:      year.CreatedAt,
		Status:         status,
		ClassCount:     classCount,
		EnrolledCount:  enrolledCount,
	}

	if year.TransitionDate != nil {
		date := year.TransitionDate.Format(time.DateOnly)
		response.TransitionDate = &date
	}

	return response
}
