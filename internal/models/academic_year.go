package models

import "time"

// School year statuses derived from stored flags and dates. The status is
// never persisted; see service.DeriveSchoolYearStatus.
const (
	SchoolYearStatusActive   = "active"
	SchoolYearStatusUpcoming = "upcoming"
	SchoolYearStatusArchived = "archived"
)

// AcademicYear represents one school year, e.g. "2025-2026". At most one
// year has IsActive set at any time.
type AcademicYear struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"size:16;not null" json:"name"`
	StartYear      int        `json:"start_year"`
	EndYear        int        `json:"end_year"`
	IsCurrent      bool       `gorm:"default:false" json:"is_current"`
	IsActive       bool       `gorm:"default:false" json:"is_active"`
	EnrollmentOpen bool       `gorm:"default:true" json:"enrollment_open"`
	TransitionDate *time.Time `gorm:"type:date" json:"transition_date"`
	CreatedAt      time.Time  `json:"created_at"`

	Classes []Class `gorm:"foreignKey:AcademicYearID" json:"classes,omitempty"`
}
