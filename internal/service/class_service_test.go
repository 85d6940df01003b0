package service

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
)

func newClassService(t *testing.T, db *gorm.DB) ClassService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewClassService(repository.NewClassRepository(db), repository.NewEnrollmentRepository(db), validate, nil, testLogger())
}

func seedRosterStudent(t *testing.T, db *gorm.DB, firstName string) models.Student {
	t.Helper()
	family := models.Family{ID: uuid.New(), FamilyName: firstName + " Family"}
	require.NoError(t, db.Create(&family).Error)
	student := models.Student{ID: uuid.New(), FamilyID: family.ID, FirstName: firstName, LastName: "Ngo"}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func TestClassServiceCreateUpdateDelete(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, _ := seedEnrollmentYear(t, db, true)
	svc := newClassService(t, db)

	programs, err := svc.ListPrograms(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 2)

	created, err := svc.Create(context.Background(), dto.ClassCreateRequest{
		Name:           "Giao Ly 5",
		ProgramID:      programs[0].ID,
		AcademicYearID: year.ID,
	}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, "Giao Ly 5", created.Name)
	require.Equal(t, programs[0].Name, created.ProgramName)

	newName := "Giao Ly 5A"
	updated, err := svc.Update(context.Background(), created.ID, dto.ClassUpdateRequest{Name: &newName}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, "Giao Ly 5A", updated.Name)

	require.NoError(t, svc.Delete(context.Background(), created.ID, ActivityActor{}))
	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrClassNotFound)

	_, err = svc.Create(context.Background(), dto.ClassCreateRequest{
		Name:           "Orphan 1",
		ProgramID:      9999,
		AcademicYearID: year.ID,
	}, ActivityActor{})
	require.ErrorIs(t, err, ErrProgramNotFound)
}

func TestClassServiceEnrollmentLifecycle(t *testing.T) {
	db := setupEnrollmentDB(t)
	_, classes := seedEnrollmentYear(t, db, true)
	svc := newClassService(t, db)

	student := seedRosterStudent(t, db, "Hieu")
	class := classes["Giao Ly 2"]

	enrollment, err := svc.Enroll(context.Background(), dto.ManualEnrollmentRequest{
		StudentID: student.ID,
		ClassID:   class.ID,
	}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, class.ID, enrollment.ClassID)

	_, err = svc.Enroll(context.Background(), dto.ManualEnrollmentRequest{
		StudentID: student.ID,
		ClassID:   class.ID,
	}, ActivityActor{})
	require.ErrorIs(t, err, ErrAlreadyEnrolled)

	_, err = svc.Enroll(context.Background(), dto.ManualEnrollmentRequest{
		StudentID: uuid.New(),
		ClassID:   class.ID,
	}, ActivityActor{})
	require.ErrorIs(t, err, ErrStudentNotFound)

	err = svc.Delete(context.Background(), class.ID, ActivityActor{})
	require.ErrorIs(t, err, ErrClassHasEnrollments)

	require.NoError(t, svc.Unenroll(context.Background(), student.ID, class.ID, ActivityActor{}))
	require.ErrorIs(t, svc.Unenroll(context.Background(), student.ID, class.ID, ActivityActor{}), ErrEnrollmentNotFound)
}

func TestClassServiceBulkEnroll(t *testing.T) {
	db := setupEnrollmentDB(t)
	_, classes := seedEnrollmentYear(t, db, true)
	svc := newClassService(t, db)

	first := seedRosterStudent(t, db, "Phuc")
	second := seedRosterStudent(t, db, "Quang")
	class := classes["Viet Ngu 1"]

	_, err := svc.Enroll(context.Background(), dto.ManualEnrollmentRequest{StudentID: first.ID, ClassID: class.ID}, ActivityActor{})
	require.NoError(t, err)

	resp, err := svc.BulkEnroll(context.Background(), dto.BulkEnrollmentRequest{
		ClassID:    class.ID,
		StudentIDs: []uuid.UUID{first.ID, second.ID, uuid.New()},
	}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, 1, resp.EnrolledCount)
	require.Len(t, resp.Failures, 2)
	require.Equal(t, "already enrolled", resp.Failures[0].Reason)
	require.Equal(t, "student not found", resp.Failures[1].Reason)
}

func TestClassServiceRosterAndCSVExport(t *testing.T) {
	db := setupEnrollmentDB(t)
	_, classes := seedEnrollmentYear(t, db, true)
	svc := newClassService(t, db)

	class := classes["Giao Ly 3"]
	for _, name := range []string{"Tuan", "An"} {
		student := seedRosterStudent(t, db, name)
		_, err := svc.Enroll(context.Background(), dto.ManualEnrollmentRequest{StudentID: student.ID, ClassID: class.ID}, ActivityActor{})
		require.NoError(t, err)
	}

	roster, err := svc.GetRoster(context.Background(), class.ID)
	require.NoError(t, err)
	require.Len(t, roster.Roster, 2)
	require.Equal(t, "An Ngo", roster.Roster[0].StudentName, "expected roster sorted by name")
	require.Equal(t, int64(2), roster.Class.EnrollmentCount)

	payload, filename, err := svc.ExportRosterCSV(context.Background(), class.ID)
	require.NoError(t, err)
	require.Equal(t, "giao_ly_3_roster.csv", filename)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Student Name,Grade Level,Class,Program", lines[0])
	require.Contains(t, lines[1], "An Ngo")
	require.Contains(t, lines[1], "Giao Ly 3")
}
