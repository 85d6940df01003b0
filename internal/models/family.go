package models

import "github.com/google/uuid"

// Family is the household unit that owns guardians, students and emergency
// contacts. Deleting a family cascades to all of them.
type Family struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyName string    `gorm:"size:255;not null" json:"family_name"`
	Address    string    `gorm:"size:255" json:"address"`
	City       string    `gorm:"size:128" json:"city"`
	State      string    `gorm:"size:64" json:"state"`
	ZipCode    string    `gorm:"size:16" json:"zip_code"`
	DioceseID  *string   `gorm:"size:64" json:"diocese_id"`

	Guardians         []Guardian         `gorm:"constraint:OnDelete:CASCADE" json:"guardians,omitempty"`
	Students          []Student          `gorm:"constraint:OnDelete:CASCADE" json:"students,omitempty"`
	EmergencyContacts []EmergencyContact `gorm:"constraint:OnDelete:CASCADE" json:"emergency_contacts,omitempty"`
	Payments          []Payment          `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

// Guardian is a parent or legal guardian attached to a family. Email is
// unique across all guardians and doubles as the portal lookup key.
type Guardian struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID             uuid.UUID `gorm:"type:uuid;not null;index" json:"family_id"`
	Name                 string    `gorm:"size:255;not null" json:"name"`
	Email                string    `gorm:"size:255;uniqueIndex" json:"email"`
	Phone                string    `gorm:"size:32" json:"phone"`
	RelationshipToFamily string    `gorm:"size:64" json:"relationship_to_family"`
}

// EmergencyContact is an additional contact for a family. Phone is required,
// email is optional.
type EmergencyContact struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID             uuid.UUID `gorm:"type:uuid;not null;index" json:"family_id"`
	Name                 string    `gorm:"size:255;not null" json:"name"`
	Phone                string    `gorm:"size:32;not null" json:"phone"`
	Email                string    `gorm:"size:255;index" json:"email"`
	RelationshipToFamily string    `gorm:"size:64" json:"relationship_to_family"`
}
