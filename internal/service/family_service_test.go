package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
)

func newFamilyService(t *testing.T, db *gorm.DB) FamilyService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewFamilyService(repository.NewFamilyRepository(db), validate, nil, testLogger())
}

func TestFamilyServiceCRUD(t *testing.T) {
	db := setupEnrollmentDB(t)
	svc := newFamilyService(t, db)

	created, err := svc.Create(context.Background(), dto.FamilyInfo{FamilyName: "Ly", City: "Beaverton"}, ActivityActor{})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	updated, err := svc.Update(context.Background(), created.ID, dto.FamilyInfo{FamilyName: "Ly", City: "Tigard"}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, "Tigard", updated.City)

	list, err := svc.List(context.Background(), dto.FamilyListRequest{Search: "ly"})
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Pagination.TotalItems)

	require.NoError(t, svc.Delete(context.Background(), created.ID, ActivityActor{}))
	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrFamilyNotFound)

	err = svc.Delete(context.Background(), created.ID, ActivityActor{})
	require.ErrorIs(t, err, ErrFamilyNotFound)
}

func TestFamilyServiceChildEntities(t *testing.T) {
	db := setupEnrollmentDB(t)
	svc := newFamilyService(t, db)

	family, err := svc.Create(context.Background(), dto.FamilyInfo{FamilyName: "Do"}, ActivityActor{})
	require.NoError(t, err)

	guardian, err := svc.AddGuardian(context.Background(), family.ID, dto.GuardianPayload{
		Name:  "Tam Do",
		Email: "Tam.Do@Example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "tam.do@example.com", guardian.Email)

	student, err := svc.AddStudent(context.Background(), family.ID, dto.StudentPayload{
		FirstName:   "Vy",
		LastName:    "Do",
		DateOfBirth: strPtr("2017-04-12"),
		Notes:       strPtr("<b>asthma</b>"),
	})
	require.NoError(t, err)
	require.NotNil(t, student.DateOfBirth)
	require.Equal(t, "2017-04-12", *student.DateOfBirth)
	require.NotNil(t, student.Notes)
	require.Equal(t, "asthma", *student.Notes)

	contact, err := svc.AddEmergencyContact(context.Background(), family.ID, dto.EmergencyContactPayload{
		Name:  "Thao Vu",
		Phone: "503-555-0303",
	})
	require.NoError(t, err)

	graph, err := svc.Get(context.Background(), family.ID)
	require.NoError(t, err)
	require.Len(t, graph.Guardians, 1)
	require.Len(t, graph.Students, 1)
	require.Len(t, graph.EmergencyContacts, 1)

	require.NoError(t, svc.RemoveGuardian(context.Background(), family.ID, guardian.ID))
	require.ErrorIs(t, svc.RemoveGuardian(context.Background(), family.ID, guardian.ID), ErrGuardianNotFound)

	require.NoError(t, svc.RemoveStudent(context.Background(), family.ID, student.ID))
	require.NoError(t, svc.RemoveEmergencyContact(context.Background(), family.ID, contact.ID))
}

func TestFamilyServiceRemoveStudentDeletesEnrollments(t *testing.T) {
	db := setupEnrollmentDB(t)
	_, classes := seedEnrollmentYear(t, db, true)
	svc := newFamilyService(t, db)

	family, err := svc.Create(context.Background(), dto.FamilyInfo{FamilyName: "Truong"}, ActivityActor{})
	require.NoError(t, err)

	student, err := svc.AddStudent(context.Background(), family.ID, dto.StudentPayload{FirstName: "Nam", LastName: "Truong"})
	require.NoError(t, err)

	enrollment := models.Enrollment{ID: uuid.New(), StudentID: student.ID, ClassID: classes["Giao Ly 1"].ID}
	require.NoError(t, db.Create(&enrollment).Error)

	require.NoError(t, svc.RemoveStudent(context.Background(), family.ID, student.ID))

	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).Where("student_id = ?", student.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestFamilyServiceRejectsOrphanChildren(t *testing.T) {
	db := setupEnrollmentDB(t)
	svc := newFamilyService(t, db)

	_, err := svc.AddGuardian(context.Background(), uuid.New(), dto.GuardianPayload{Name: "Nobody"})
	require.ErrorIs(t, err, ErrFamilyNotFound)

	_, err = svc.UpdateStudent(context.Background(), uuid.New(), uuid.New(), dto.StudentPayload{FirstName: "A", LastName: "B"})
	require.ErrorIs(t, err, ErrStudentNotFound)
}
