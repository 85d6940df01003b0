package models

import "github.com/google/uuid"

// Enrollment links one student to one class. A student enrolls in a given
// class at most once.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index:idx_enrollment_pair,unique" json:"student_id"`
	ClassID   uuid.UUID `gorm:"type:uuid;not null;index:idx_enrollment_pair,unique" json:"class_id"`

	Student *Student `json:"student,omitempty"`
	Class   *Class   `json:"class,omitempty"`
}
