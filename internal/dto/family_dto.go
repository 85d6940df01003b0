package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhatminh-dev/lavang-api/internal/models"
)

// FamilyListRequest defines filters for listing families.
type FamilyListRequest struct {
	Page     int
	PageSize int
	Search   string
}

// FamilyInfo carries the household fields shared by admin CRUD and the
// enrollment submission.
type FamilyInfo struct {
	FamilyName string  `json:"family_name" validate:"required,min=1,max=255"`
	Address    string  `json:"address" validate:"max=255"`
	City       string  `json:"city" validate:"max=128"`
	State      string  `json:"state" validate:"max=64"`
	ZipCode    string  `json:"zip_code" validate:"max=16"`
	DioceseID  *string `json:"diocese_id"`
}

// GuardianPayload carries guardian fields for create/update endpoints.
type GuardianPayload struct {
	Name                 string `json:"name" validate:"required,min=1,max=255"`
	Email                string `json:"email" validate:"omitempty,email"`
	Phone                string `json:"phone" validate:"max=32"`
	RelationshipToFamily string `json:"relationship_to_family" validate:"max=64"`
}

// StudentPayload carries student fields for create/update endpoints.
type StudentPayload struct {
	FirstName      string  `json:"first_name" validate:"required,min=1,max=128"`
	LastName       string  `json:"last_name" validate:"required,min=1,max=128"`
	MiddleName     *string `json:"middle_name"`
	SaintName      *string `json:"saint_name"`
	DateOfBirth    *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender         *string `json:"gender"`
	GradeLevel     *int    `json:"grade_level" validate:"omitempty,min=0,max=12"`
	AmericanSchool *string `json:"american_school"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
}

// EmergencyContactPayload carries emergency contact fields.
type EmergencyContactPayload struct {
	Name                 string `json:"name" validate:"required,min=1,max=255"`
	Phone                string `json:"phone" validate:"required,max=32"`
	Email                string `json:"email" validate:"omitempty,email"`
	RelationshipToFamily string `json:"relationship_to_family" validate:"max=64"`
}

// GuardianResponse serializes a guardian.
type GuardianResponse struct {
	ID                   uuid.UUID `json:"id"`
	FamilyID             uuid.UUID `json:"family_id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone"`
	RelationshipToFamily string    `json:"relationship_to_family"`
}

// StudentResponse serializes a student, optionally with enrollments.
type StudentResponse struct {
	ID             uuid.UUID            `json:"id"`
	FamilyID       uuid.UUID            `json:"family_id"`
	FirstName      string               `json:"first_name"`
	LastName       string               `json:"last_name"`
	MiddleName     *string              `json:"middle_name"`
	SaintName      *string              `json:"saint_name"`
	DateOfBirth    *string              `json:"date_of_birth"`
	Gender         *string              `json:"gender"`
	GradeLevel     *int                 `json:"grade_level"`
	AmericanSchool *string              `json:"american_school"`
	Notes          *string              `json:"notes"`
	Enrollments    []EnrollmentResponse `json:"enrollments,omitempty"`
}

// EmergencyContactResponse serializes an emergency contact.
type EmergencyContactResponse struct {
	ID                   uuid.UUID `json:"id"`
	FamilyID             uuid.UUID `json:"family_id"`
	Name                 string    `json:"name"`
	Phone                string    `json:"phone"`
	Email                string    `json:"email"`
	RelationshipToFamily string    `json:"relationship_to_family"`
}

// FamilyResponse serializes a family and, when loaded, its child entities.
type FamilyResponse struct {
	ID                uuid.UUID                  `json:"id"`
	FamilyName        string                     `json:"family_name"`
	Address           string                     `json:"address"`
	City              string                     `json:"city"`
	State             string                     `json:"state"`
	ZipCode           string                     `json:"zip_code"`
	DioceseID         *string                    `json:"diocese_id"`
	Guardians         []GuardianResponse         `json:"guardians,omitempty"`
	Students          []StudentResponse          `json:"students,omitempty"`
	EmergencyContacts []EmergencyContactResponse `json:"emergency_contacts,omitempty"`
}

// FamilyListResponse wraps a paginated family response.
type FamilyListResponse struct {
	Items      []FamilyResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// NewGuardianResponse maps a guardian model to its response shape.
func NewGuardianResponse(guardian models.Guardian) GuardianResponse {
	return GuardianResponse{
		ID:                   guardian.ID,
		FamilyID:             guardian.FamilyID,
		Name:                 guardian.Name,
		Email:                guardian.Email,
		Phone:                guardian.Phone,
		RelationshipToFamily: guardian.RelationshipToFamily,
	}
}

// NewStudentResponse maps a student model to its response shape.
func NewStudentResponse(student models.Student) StudentResponse {
	response := StudentResponse{
		ID:             student.ID,
		FamilyID:       student.FamilyID,
		FirstName:      student.FirstName,
		LastName:       student.LastName,
		MiddleName:     student.MiddleName,
		SaintName:      student.SaintName,
		Gender:         student.Gender,
		GradeLevel:     student.GradeLevel,
		AmericanSchool: student.AmericanSchool,
		Notes:          student.Notes,
	}

	if student.DateOfBirth != nil {
		dob := student.DateOfBirth.Format(time.DateOnly)
		response.DateOfBirth = &dob
	}

	for _, enrollment := range student.Enrollments {
		response.Enrollments = append(response.Enrollments, NewEnrollmentResponse(enrollment))
	}

	return response
}

// NewEmergencyContactResponse maps an emergency contact model to its
// response shape.
func NewEmergencyContactResponse(contact models.EmergencyContact) EmergencyContactResponse {
	return EmergencyContactResponse{
		ID:                   contact.ID,
		FamilyID:             contact.FamilyID,
		Name:                 contact.Name,
		Phone:                contact.Phone,
		Email:                contact.Email,
		RelationshipToFamily: contact.RelationshipToFamily,
	}
}

// NewFamilyResponse maps a family model, including whichever child
// collections were loaded, to its response shape.
func NewFamilyResponse(family models.Family) FamilyResponse {
	response := FamilyResponse{
		ID:         family.ID,
		FamilyName: family.FamilyName,
		Address:    family.Address,
		City:       family.City,
		State:      family.State,
		ZipCode:    family.ZipCode,
		DioceseID:  family.DioceseID,
	}

	for _, guardian := range family.Guardians {
		response.Guardians = append(response.Guardians, NewGuardianResponse(guardian))
	}
	for _, student := range family.Students {
		response.Students = append(response.Students, NewStudentResponse(student))
	}
	for _, contact := range family.EmergencyContacts {
		response.EmergencyContacts = append(response.EmergencyContacts, NewEmergencyContactResponse(contact))
	}

	return response
}
