package models

import "github.com/google/uuid"

// Program groups classes by curriculum, e.g. "Giao Ly" or "Viet Ngu".
type Program struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:128;not null" json:"name"`

	Classes []Class `gorm:"foreignKey:ProgramID" json:"classes,omitempty"`
}

// Class is one section offered for a program in one academic year. Class
// names carry an optional trailing level number ("Giao Ly 3").
type Class struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	ProgramID      uint      `gorm:"index" json:"program_id"`
	AcademicYearID uint      `gorm:"index" json:"academic_year_id"`

	Program      *Program      `json:"program,omitempty"`
	AcademicYear *AcademicYear `json:"academic_year,omitempty"`
	Enrollments  []Enrollment  `gorm:"constraint:OnDelete:CASCADE" json:"enrollments,omitempty"`
}
