package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
)

func setupEnrollmentDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := setupYearDB(t)
	require.NoError(t, db.Exec("DELETE FROM guardians").Error)
	require.NoError(t, db.Exec("DELETE FROM students").Error)
	require.NoError(t, db.Exec("DELETE FROM emergency_contacts").Error)
	require.NoError(t, db.Exec("DELETE FROM families").Error)
	require.NoError(t, db.Exec("DELETE FROM programs").Error)
	return db
}

func newEnrollmentService(t *testing.T, db *gorm.DB) EnrollmentService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	store := repository.NewEnrollmentStore(db)
	families := repository.NewFamilyRepository(db)
	years := NewSchoolYearService(repository.NewSchoolYearRepository(db), validate, nil, 0, nil, testLogger())
	return NewEnrollmentService(store, families, years, nil, nil, validate, testLogger())
}

func seedEnrollmentYear(t *testing.T, db *gorm.DB, open bool) (models.AcademicYear, map[string]models.Class) {
	t.Helper()

	year := models.AcademicYear{Name: "2026-2027", StartYear: 2026, EndYear: 2027, IsActive: true, IsCurrent: true}
	require.NoError(t, db.Create(&year).Error)
	if !open {
		require.NoError(t, db.Model(&models.AcademicYear{}).Where("id = ?", year.ID).Update("enrollment_open", false).Error)
		year.EnrollmentOpen = false
	} else {
		year.EnrollmentOpen = true
	}

	giaoLy := models.Program{Name: "Giáo Lý"}
	vietNgu := models.Program{Name: "Việt Ngữ"}
	require.NoError(t, db.Create(&giaoLy).Error)
	require.NoError(t, db.Create(&vietNgu).Error)

	classes := make(map[string]models.Class)
	for level := 1; level <= 4; level++ {
		class := models.Class{ID: uuid.New(), Name: fmt.Sprintf("Giao Ly %d", level), ProgramID: giaoLy.ID, AcademicYearID: year.ID}
		require.NoError(t, db.Create(&class).Error)
		classes[class.Name] = class
	}
	for _, level := range []int{1, 2, 9} {
		class := models.Class{ID: uuid.New(), Name: fmt.Sprintf("Viet Ngu %d", level), ProgramID: vietNgu.ID, AcademicYearID: year.ID}
		require.NoError(t, db.Create(&class).Error)
		classes[class.Name] = class
	}

	return year, classes
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestEnrollmentSubmitCreatesFamilyGraph(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, classes := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	req := dto.EnrollmentSubmissionRequest{
		FamilyInfo: dto.FamilyInfo{FamilyName: "Nguyen", City: "Portland", State: "OR"},
		Guardians: []dto.GuardianSubmission{
			{ID: "new-1", Name: "Anh Nguyen", Email: "anh.nguyen@example.com", RelationshipToFamily: "mother"},
			{ID: "new-2", Name: "Binh Nguyen", Email: "binh.nguyen@example.com", RelationshipToFamily: "father"},
		},
		Students: []dto.StudentSubmission{
			{ID: "student-a", FirstName: "Chi", LastName: "Nguyen", GradeLevel: intPtr(3)},
			{ID: "student-b", FirstName: "Duc", LastName: "Nguyen", GradeLevel: intPtr(1)},
		},
		EmergencyContacts: []dto.EmergencyContactSubmission{
			{ID: "new-3", Name: "Lan Tran", Phone: "503-555-0101"},
		},
		ClassSelections: []dto.ClassSelection{
			{StudentID: "student-a", GiaoLyLevel: intPtr(3), VietNguLevel: intPtr(2)},
			{StudentID: "student-b", GiaoLyLevel: intPtr(1)},
		},
		AcademicYearID: year.ID,
	}

	resp, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.NotEqual(t, uuid.Nil, resp.FamilyID)
	require.Len(t, resp.EnrollmentIDs, 3)

	var family models.Family
	require.NoError(t, db.Preload("Guardians").Preload("Students").Preload("EmergencyContacts").First(&family, "id = ?", resp.FamilyID).Error)
	require.Equal(t, "Nguyen", family.FamilyName)
	require.Len(t, family.Guardians, 2)
	require.Len(t, family.Students, 2)
	require.Len(t, family.EmergencyContacts, 1)

	var enrollments []models.Enrollment
	require.NoError(t, db.Find(&enrollments).Error)
	require.Len(t, enrollments, 3)

	enrolledClasses := make(map[uuid.UUID]int)
	for _, enrollment := range enrollments {
		enrolledClasses[enrollment.ClassID]++
	}
	require.Equal(t, 1, enrolledClasses[classes["Giao Ly 3"].ID])
	require.Equal(t, 1, enrolledClasses[classes["Viet Ngu 2"].ID])
	require.Equal(t, 1, enrolledClasses[classes["Giao Ly 1"].ID])
}

func TestEnrollmentSubmitResubmissionReconciles(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, classes := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	first, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyInfo: dto.FamilyInfo{FamilyName: "Pham"},
		Guardians: []dto.GuardianSubmission{
			{ID: "new-1", Name: "Hoa Pham", Email: "hoa.pham@example.com"},
		},
		Students: []dto.StudentSubmission{
			{ID: "kid-1", FirstName: "Khoa", LastName: "Pham"},
			{ID: "kid-2", FirstName: "Linh", LastName: "Pham"},
		},
		ClassSelections: []dto.ClassSelection{
			{StudentID: "kid-1", GiaoLyLevel: intPtr(2)},
			{StudentID: "kid-2", GiaoLyLevel: intPtr(4)},
		},
		AcademicYearID: year.ID,
	})
	require.NoError(t, err)
	require.Len(t, first.EnrollmentIDs, 2)

	var family models.Family
	require.NoError(t, db.Preload("Students").Preload("Guardians").First(&family, "id = ?", first.FamilyID).Error)
	require.Len(t, family.Students, 2)

	var keptStudent models.Student
	for _, student := range family.Students {
		if student.FirstName == "Khoa" {
			keptStudent = student
		}
	}
	require.NotEqual(t, uuid.Nil, keptStudent.ID)

	familyID := family.ID
	second, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyID:   &familyID,
		FamilyInfo: dto.FamilyInfo{FamilyName: "Pham", City: "Salem"},
		Guardians: []dto.GuardianSubmission{
			{ID: family.Guardians[0].ID.String(), Name: "Hoa Pham", Email: "hoa.pham@example.com", Phone: "503-555-0202"},
		},
		Students: []dto.StudentSubmission{
			{ID: keptStudent.ID.String(), FirstName: "Khoa", LastName: "Pham"},
			{ID: "kid-3", FirstName: "Minh", LastName: "Pham"},
		},
		ClassSelections: []dto.ClassSelection{
			{StudentID: keptStudent.ID.String(), GiaoLyLevel: intPtr(3)},
			{StudentID: "kid-3", VietNguLevel: intPtr(1)},
		},
		AcademicYearID: year.ID,
	})
	require.NoError(t, err)
	require.Equal(t, first.FamilyID, second.FamilyID)
	require.Len(t, second.EnrollmentIDs, 2)

	var students []models.Student
	require.NoError(t, db.Where("family_id = ?", familyID).Find(&students).Error)
	require.Len(t, students, 2)
	names := []string{students[0].FirstName, students[1].FirstName}
	require.ElementsMatch(t, []string{"Khoa", "Minh"}, names)

	// Linh and her enrollment are gone; Khoa moved from level 2 to 3.
	var enrollments []models.Enrollment
	require.NoError(t, db.Find(&enrollments).Error)
	require.Len(t, enrollments, 2)
	for _, enrollment := range enrollments {
		require.NotEqual(t, classes["Giao Ly 2"].ID, enrollment.ClassID)
		require.NotEqual(t, classes["Giao Ly 4"].ID, enrollment.ClassID)
	}

	refreshed := models.Family{}
	require.NoError(t, db.First(&refreshed, "id = ?", familyID).Error)
	require.Equal(t, "Salem", refreshed.City)
}

func TestEnrollmentSubmitAcceptedWhenYearClosed(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, classes := seedEnrollmentYear(t, db, false)
	svc := newEnrollmentService(t, db)

	// The open flag gates the portal's current-year read, not submissions:
	// a family that already loaded the form still gets to finish it.
	resp, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyInfo: dto.FamilyInfo{FamilyName: "Le"},
		Students: []dto.StudentSubmission{
			{ID: "kid-1", FirstName: "Mai", LastName: "Le"},
		},
		ClassSelections: []dto.ClassSelection{
			{StudentID: "kid-1", GiaoLyLevel: intPtr(1)},
		},
		AcademicYearID: year.ID,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, resp.EnrollmentIDs, 1)

	var enrollment models.Enrollment
	require.NoError(t, db.First(&enrollment, "id = ?", resp.EnrollmentIDs[0]).Error)
	require.Equal(t, classes["Giao Ly 1"].ID, enrollment.ClassID)
}

func TestEnrollmentCurrentYearClosed(t *testing.T) {
	db := setupEnrollmentDB(t)
	seedEnrollmentYear(t, db, false)
	svc := newEnrollmentService(t, db)

	_, err := svc.CurrentYear(context.Background())
	require.ErrorIs(t, err, ErrEnrollmentClosed)
}

func TestEnrollmentSubmitUnknownYear(t *testing.T) {
	db := setupEnrollmentDB(t)
	svc := newEnrollmentService(t, db)

	_, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyInfo:     dto.FamilyInfo{FamilyName: "Vo"},
		AcademicYearID: 4242,
	})
	require.ErrorIs(t, err, ErrSchoolYearNotFound)
}

func TestEnrollmentSubmitSkipsUnresolvableSelections(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, _ := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	resp, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyInfo: dto.FamilyInfo{FamilyName: "Tran"},
		Students: []dto.StudentSubmission{
			{ID: "kid-1", FirstName: "An", LastName: "Tran"},
		},
		ClassSelections: []dto.ClassSelection{
			{StudentID: "missing-kid", GiaoLyLevel: intPtr(1)},
			{StudentID: uuid.NewString(), GiaoLyLevel: intPtr(2)},
			{StudentID: "kid-1", GiaoLyLevel: intPtr(7)},
		},
		AcademicYearID: year.ID,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Empty(t, resp.EnrollmentIDs)
}

func TestEnrollmentSubmitIgnoresCompletedFlags(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, classes := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	// The portal sends completed markers for display only; a selection that
	// names a level still enrolls.
	resp, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyInfo: dto.FamilyInfo{FamilyName: "Ngo"},
		Students: []dto.StudentSubmission{
			{ID: "kid-1", FirstName: "Tam", LastName: "Ngo"},
		},
		ClassSelections: []dto.ClassSelection{
			{StudentID: "kid-1", GiaoLyLevel: intPtr(2), GiaoLyCompleted: true, VietNguLevel: intPtr(1), VietNguCompleted: true},
		},
		AcademicYearID: year.ID,
	})
	require.NoError(t, err)
	require.Len(t, resp.EnrollmentIDs, 2)

	var enrollments []models.Enrollment
	require.NoError(t, db.Find(&enrollments).Error)
	enrolledClasses := make(map[uuid.UUID]struct{})
	for _, enrollment := range enrollments {
		enrolledClasses[enrollment.ClassID] = struct{}{}
	}
	require.Contains(t, enrolledClasses, classes["Giao Ly 2"].ID)
	require.Contains(t, enrolledClasses, classes["Viet Ngu 1"].ID)
}

func TestEnrollmentSubmitRollsBackOnEnrollmentFailure(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, _ := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	// Force the enrollment insert to fail after the family graph has been
	// written, so the whole submission must roll back.
	require.NoError(t, db.Exec("CREATE UNIQUE INDEX idx_enrollments_one_per_class ON enrollments (class_id)").Error)
	t.Cleanup(func() {
		db.Exec("DROP INDEX IF EXISTS idx_enrollments_one_per_class")
	})

	_, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyInfo: dto.FamilyInfo{FamilyName: "Vu"},
		Guardians: []dto.GuardianSubmission{
			{ID: "new-1", Name: "Thao Vu", Email: "thao.vu@example.com"},
		},
		Students: []dto.StudentSubmission{
			{ID: "kid-1", FirstName: "An", LastName: "Vu"},
			{ID: "kid-2", FirstName: "Binh", LastName: "Vu"},
		},
		EmergencyContacts: []dto.EmergencyContactSubmission{
			{ID: "new-2", Name: "Cuc Vu", Phone: "503-555-0303"},
		},
		ClassSelections: []dto.ClassSelection{
			{StudentID: "kid-1", GiaoLyLevel: intPtr(1)},
			{StudentID: "kid-2", GiaoLyLevel: intPtr(1)},
		},
		AcademicYearID: year.ID,
	})
	require.Error(t, err)

	for _, model := range []interface{}{
		&models.Family{}, &models.Guardian{}, &models.Student{},
		&models.EmergencyContact{}, &models.Enrollment{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		require.Zero(t, count)
	}
}

func TestEnrollmentSubmitReplacesOnlyTargetYear(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, classes := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	priorYear := models.AcademicYear{Name: "2025-2026", StartYear: 2025, EndYear: 2026}
	require.NoError(t, db.Create(&priorYear).Error)

	var giaoLy models.Program
	require.NoError(t, db.First(&giaoLy, "name = ?", "Giáo Lý").Error)
	priorClass := models.Class{ID: uuid.New(), Name: "Giao Ly 1", ProgramID: giaoLy.ID, AcademicYearID: priorYear.ID}
	require.NoError(t, db.Create(&priorClass).Error)

	first, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyInfo: dto.FamilyInfo{FamilyName: "Dinh"},
		Students: []dto.StudentSubmission{
			{ID: "kid-1", FirstName: "Hanh", LastName: "Dinh"},
		},
		ClassSelections: []dto.ClassSelection{
			{StudentID: "kid-1", GiaoLyLevel: intPtr(2)},
		},
		AcademicYearID: year.ID,
	})
	require.NoError(t, err)

	var student models.Student
	require.NoError(t, db.First(&student, "family_id = ?", first.FamilyID).Error)

	priorEnrollment := models.Enrollment{ID: uuid.New(), StudentID: student.ID, ClassID: priorClass.ID}
	require.NoError(t, db.Create(&priorEnrollment).Error)

	familyID := first.FamilyID
	_, err = svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyID:   &familyID,
		FamilyInfo: dto.FamilyInfo{FamilyName: "Dinh"},
		Students: []dto.StudentSubmission{
			{ID: student.ID.String(), FirstName: "Hanh", LastName: "Dinh"},
		},
		ClassSelections: []dto.ClassSelection{
			{StudentID: student.ID.String(), GiaoLyLevel: intPtr(3)},
		},
		AcademicYearID: year.ID,
	})
	require.NoError(t, err)

	// The resubmission replaces the current year's roster only; the
	// prior-year record survives untouched.
	var kept int64
	require.NoError(t, db.Model(&models.Enrollment{}).Where("id = ?", priorEnrollment.ID).Count(&kept).Error)
	require.Equal(t, int64(1), kept)

	var current []models.Enrollment
	require.NoError(t, db.Where("student_id = ? AND class_id <> ?", student.ID, priorClass.ID).Find(&current).Error)
	require.Len(t, current, 1)
	require.Equal(t, classes["Giao Ly 3"].ID, current[0].ClassID)
}

func TestEnrollmentSubmitSkipsUnroutableClasses(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, _ := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	var giaoLy models.Program
	require.NoError(t, db.First(&giaoLy, "name = ?", "Giáo Lý").Error)

	// A level-zero class and a class whose program row is missing are both
	// excluded from selection routing.
	levelZero := models.Class{ID: uuid.New(), Name: "Giao Ly 0", ProgramID: giaoLy.ID, AcademicYearID: year.ID}
	require.NoError(t, db.Create(&levelZero).Error)
	orphan := models.Class{ID: uuid.New(), Name: "Giao Ly 5", ProgramID: 9999, AcademicYearID: year.ID}
	require.NoError(t, db.Create(&orphan).Error)

	resp, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyInfo: dto.FamilyInfo{FamilyName: "Ly"},
		Students: []dto.StudentSubmission{
			{ID: "kid-1", FirstName: "Phuc", LastName: "Ly"},
		},
		ClassSelections: []dto.ClassSelection{
			{StudentID: "kid-1", GiaoLyLevel: intPtr(0)},
			{StudentID: "kid-1", GiaoLyLevel: intPtr(5)},
		},
		AcademicYearID: year.ID,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Empty(t, resp.EnrollmentIDs)
}

func TestEnrollmentSubmitSanitizesNotes(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, _ := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	resp, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyInfo: dto.FamilyInfo{FamilyName: "Hoang"},
		Students: []dto.StudentSubmission{
			{ID: "kid-1", FirstName: "Bao", LastName: "Hoang", Notes: strPtr("<script>alert('x')</script>peanut allergy")},
			{ID: "kid-2", FirstName: "Cam", LastName: "Hoang", SpecialNeeds: strPtr("needs front row seat")},
		},
		AcademicYearID: year.ID,
	})
	require.NoError(t, err)

	var students []models.Student
	require.NoError(t, db.Where("family_id = ?", resp.FamilyID).Order("first_name").Find(&students).Error)
	require.Len(t, students, 2)
	require.NotNil(t, students[0].Notes)
	require.Equal(t, "peanut allergy", *students[0].Notes)
	require.NotNil(t, students[1].Notes)
	require.Equal(t, "needs front row seat", *students[1].Notes)
}

func TestEnrollmentLookupFamilyByEmail(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, _ := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	resp, err := svc.Submit(context.Background(), dto.EnrollmentSubmissionRequest{
		FamilyInfo: dto.FamilyInfo{FamilyName: "Dang"},
		Guardians: []dto.GuardianSubmission{
			{ID: "new-1", Name: "Quyen Dang", Email: "Quyen.Dang@Example.com"},
		},
		AcademicYearID: year.ID,
	})
	require.NoError(t, err)

	lookup, err := svc.LookupFamilyByEmail(context.Background(), "quyen.dang@example.com")
	require.NoError(t, err)
	require.True(t, lookup.IsExistingFamily)
	require.NotNil(t, lookup.FamilyID)
	require.Equal(t, resp.FamilyID, *lookup.FamilyID)
	require.Equal(t, "Dang", *lookup.FamilyName)
	require.Equal(t, "Quyen Dang", *lookup.GuardianName)

	missing, err := svc.LookupFamilyByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.False(t, missing.IsExistingFamily)
	require.Nil(t, missing.FamilyID)
}

func TestEnrollmentCurrentYearAndCatalog(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, _ := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	current, err := svc.CurrentYear(context.Background())
	require.NoError(t, err)
	require.Equal(t, year.ID, current.ID)
	require.True(t, current.EnrollmentOpen)

	catalog, err := svc.ListClasses(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, catalog.Classes, 7)
	require.Len(t, catalog.GroupedByProgram["Giáo Lý"], 4)
	require.Len(t, catalog.GroupedByProgram["Việt Ngữ"], 3)
}

func TestEnrollmentSuggestedEnrollments(t *testing.T) {
	db := setupEnrollmentDB(t)
	year, classes := seedEnrollmentYear(t, db, true)
	svc := newEnrollmentService(t, db)

	priorYear := models.AcademicYear{Name: "2025-2026", StartYear: 2025, EndYear: 2026}
	require.NoError(t, db.Create(&priorYear).Error)

	var giaoLy models.Program
	require.NoError(t, db.First(&giaoLy, "name = ?", "Giáo Lý").Error)
	var vietNgu models.Program
	require.NoError(t, db.First(&vietNgu, "name = ?", "Việt Ngữ").Error)

	oldGiaoLy := models.Class{ID: uuid.New(), Name: "Giao Ly 3", ProgramID: giaoLy.ID, AcademicYearID: priorYear.ID}
	oldVietNgu := models.Class{ID: uuid.New(), Name: "Viet Ngu 9", ProgramID: vietNgu.ID, AcademicYearID: priorYear.ID}
	require.NoError(t, db.Create(&oldGiaoLy).Error)
	require.NoError(t, db.Create(&oldVietNgu).Error)

	family := models.Family{ID: uuid.New(), FamilyName: "Bui"}
	require.NoError(t, db.Create(&family).Error)
	student := models.Student{ID: uuid.New(), FamilyID: family.ID, FirstName: "Em", LastName: "Bui"}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&models.Enrollment{ID: uuid.New(), StudentID: student.ID, ClassID: oldGiaoLy.ID}).Error)
	require.NoError(t, db.Create(&models.Enrollment{ID: uuid.New(), StudentID: student.ID, ClassID: oldVietNgu.ID}).Error)

	suggestions, err := svc.SuggestedEnrollments(context.Background(), family.ID)
	require.NoError(t, err)
	require.Equal(t, year.ID, suggestions.AcademicYearID)
	require.Len(t, suggestions.SuggestedEnrollments, 1)

	studentSuggestions := suggestions.SuggestedEnrollments[0]
	require.Equal(t, "Em Bui", studentSuggestions.StudentName)
	// Giao Ly 3 advances to Giao Ly 4; Viet Ngu 9 is the final level.
	require.Len(t, studentSuggestions.SuggestedClasses, 1)
	require.Equal(t, classes["Giao Ly 4"].ID, studentSuggestions.SuggestedClasses[0].ClassID)
	require.Equal(t, "Giao Ly 3", studentSuggestions.SuggestedClasses[0].PreviousClassName)
	require.True(t, studentSuggestions.SuggestedClasses[0].IsAutoSuggested)

	_, err = svc.SuggestedEnrollments(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrFamilyNotFound)
}
