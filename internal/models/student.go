package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Student is a child enrolled (or enrollable) in classes. A student belongs
// to exactly one family.
type Student struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"family_id"`
	FirstName      string     `gorm:"size:128;not null" json:"first_name"`
	LastName       string     `gorm:"size:128;not null" json:"last_name"`
	MiddleName     *string    `gorm:"size:128" json:"middle_name"`
	SaintName      *string    `gorm:"size:128" json:"saint_name"`
	DateOfBirth    *time.Time `gorm:"type:date" json:"date_of_birth"`
	Gender         *string    `gorm:"size:16" json:"gender"`
	GradeLevel     *int       `json:"grade_level"`
	AmericanSchool *string    `gorm:"size:255" json:"american_school"`
	Notes          *string    `gorm:"type:text" json:"notes"`

	Enrollments []Enrollment `gorm:"constraint:OnDelete:CASCADE" json:"enrollments,omitempty"`
}

// FullName joins the first and last name for display and roster exports.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
