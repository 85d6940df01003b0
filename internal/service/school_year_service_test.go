package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
)

func setupYearDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Family{},
		&models.Guardian{},
		&models.Student{},
		&models.EmergencyContact{},
		&models.AcademicYear{},
		&models.Program{},
		&models.Class{},
		&models.Enrollment{},
		&models.Payment{},
	))
	require.NoError(t, db.Exec("DELETE FROM enrollments").Error)
	require.NoError(t, db.Exec("DELETE FROM classes").Error)
	require.NoError(t, db.Exec("DELETE FROM academic_years").Error)
	return db
}

func newYearService(t *testing.T, db *gorm.DB, cache *redis.Client) SchoolYearService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	repo := repository.NewSchoolYearRepository(db)
	return NewSchoolYearService(repo, validate, cache, time.Minute, nil, testLogger())
}

func TestDeriveSchoolYearStatus(t *testing.T) {
	today := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		year models.AcademicYear
		want string
	}{
		{"active flag wins", models.AcademicYear{IsActive: true, EndYear: 2020}, models.SchoolYearStatusActive},
		{"future transition date", models.AcademicYear{TransitionDate: &future, StartYear: 2026, EndYear: 2027}, models.SchoolYearStatusUpcoming},
		{"past end year", models.AcademicYear{StartYear: 2024, EndYear: 2025}, models.SchoolYearStatusArchived},
		{"past transition but past end year", models.AcademicYear{TransitionDate: &past, StartYear: 2024, EndYear: 2025}, models.SchoolYearStatusArchived},
		{"future start year", models.AcademicYear{StartYear: 2027, EndYear: 2028}, models.SchoolYearStatusUpcoming},
		{"inactive current-dates year stays upcoming", models.AcademicYear{StartYear: 2025, EndYear: 2026}, models.SchoolYearStatusUpcoming},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DeriveSchoolYearStatus(tc.year, today))
		})
	}
}

func TestParseYearLabel(t *testing.T) {
	start, end := ParseYearLabel("2026-2027")
	require.Equal(t, 2026, start)
	require.Equal(t, 2027, end)

	start, end = ParseYearLabel("not a year")
	require.Zero(t, start)
	require.Zero(t, end)
}

func TestSchoolYearCreateDefaultsAndDuplicates(t *testing.T) {
	db := setupYearDB(t)
	svc := newYearService(t, db, nil)

	created, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2026-2027"}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, 2026, created.StartYear)
	require.Equal(t, 2027, created.EndYear)
	require.True(t, created.EnrollmentOpen)
	require.NotNil(t, created.TransitionDate)
	require.Equal(t, "2026-07-01", *created.TransitionDate)

	_, err = svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2026-2027"}, ActivityActor{})
	require.ErrorIs(t, err, ErrSchoolYearDuplicate)
}

func TestSchoolYearActivationClearsOthers(t *testing.T) {
	db := setupYearDB(t)
	svc := newYearService(t, db, nil)

	first, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2025-2026", IsActive: true}, ActivityActor{})
	require.NoError(t, err)
	require.True(t, first.IsActive)

	second, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2026-2027", IsActive: true}, ActivityActor{})
	require.NoError(t, err)
	require.True(t, second.IsActive)

	refreshed, err := svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	require.False(t, refreshed.IsActive)

	active := true
	updated, err := svc.Update(context.Background(), first.ID, dto.SchoolYearUpdateRequest{IsActive: &active}, ActivityActor{})
	require.NoError(t, err)
	require.True(t, updated.IsActive)
	require.True(t, updated.IsCurrent)

	refreshed, err = svc.Get(context.Background(), second.ID)
	require.NoError(t, err)
	require.False(t, refreshed.IsActive)
}

func TestSchoolYearCreateActiveUnderSingleActiveConstraint(t *testing.T) {
	db := setupYearDB(t)
	svc := newYearService(t, db, nil)

	// Same partial unique index the server creates at startup; creating an
	// active year while another is active must clear the old row first or
	// the insert fails outright.
	require.NoError(t, db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_academic_years_single_active ON academic_years (is_active) WHERE is_active").Error)
	t.Cleanup(func() {
		db.Exec("DROP INDEX IF EXISTS idx_academic_years_single_active")
	})

	first, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2025-2026", IsActive: true}, ActivityActor{})
	require.NoError(t, err)
	require.True(t, first.IsActive)
	// Activation always implies currency, even when the request omits it.
	require.True(t, first.IsCurrent)

	second, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2026-2027", IsActive: true}, ActivityActor{})
	require.NoError(t, err)
	require.True(t, second.IsActive)
	require.True(t, second.IsCurrent)

	refreshed, err := svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	require.False(t, refreshed.IsActive)
	require.False(t, refreshed.IsCurrent)

	var activeCount int64
	require.NoError(t, db.Model(&models.AcademicYear{}).Where("is_active = ?", true).Count(&activeCount).Error)
	require.Equal(t, int64(1), activeCount)
}

func TestSchoolYearTransition(t *testing.T) {
	db := setupYearDB(t)
	svc := newYearService(t, db, nil)

	old, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2025-2026", IsActive: true}, ActivityActor{})
	require.NoError(t, err)
	next, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2026-2027"}, ActivityActor{})
	require.NoError(t, err)

	result, err := svc.Transition(context.Background(), dto.SchoolYearTransitionRequest{NewActiveYearID: next.ID}, ActivityActor{})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, next.ID, result.NewActiveYearID)
	require.NotNil(t, result.PreviousActiveYearID)
	require.Equal(t, old.ID, *result.PreviousActiveYearID)

	refreshedOld, err := svc.Get(context.Background(), old.ID)
	require.NoError(t, err)
	require.False(t, refreshedOld.IsActive)
	require.False(t, refreshedOld.IsCurrent)

	refreshedNext, err := svc.Get(context.Background(), next.ID)
	require.NoError(t, err)
	require.True(t, refreshedNext.IsActive)
	require.True(t, refreshedNext.IsCurrent)

	_, err = svc.Transition(context.Background(), dto.SchoolYearTransitionRequest{NewActiveYearID: 99999}, ActivityActor{})
	require.ErrorIs(t, err, ErrSchoolYearNotFound)
}

func TestSchoolYearDeleteBlockedByClasses(t *testing.T) {
	db := setupYearDB(t)
	svc := newYearService(t, db, nil)

	year, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2026-2027"}, ActivityActor{})
	require.NoError(t, err)

	program := models.Program{Name: "Giao Ly"}
	require.NoError(t, db.Create(&program).Error)
	require.NoError(t, db.Create(&models.Class{ID: uuid.New(), Name: "Giao Ly 1", ProgramID: program.ID, AcademicYearID: year.ID}).Error)

	err = svc.Delete(context.Background(), year.ID, ActivityActor{})
	require.ErrorIs(t, err, ErrSchoolYearHasClass)

	require.NoError(t, db.Exec("DELETE FROM classes WHERE academic_year_id = ?", year.ID).Error)
	require.NoError(t, svc.Delete(context.Background(), year.ID, ActivityActor{}))

	_, err = svc.Get(context.Background(), year.ID)
	require.ErrorIs(t, err, ErrSchoolYearNotFound)
}

func TestSchoolYearActiveOrLatestFallback(t *testing.T) {
	db := setupYearDB(t)
	svc := newYearService(t, db, nil)

	_, err := svc.ActiveOrLatest(context.Background())
	require.ErrorIs(t, err, ErrSchoolYearNotFound)

	_, err = svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2024-2025"}, ActivityActor{})
	require.NoError(t, err)
	newest, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2026-2027"}, ActivityActor{})
	require.NoError(t, err)

	latest, err := svc.ActiveOrLatest(context.Background())
	require.NoError(t, err)
	require.Equal(t, newest.ID, latest.ID)

	activeYear, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2025-2026", IsActive: true}, ActivityActor{})
	require.NoError(t, err)

	latest, err = svc.ActiveOrLatest(context.Background())
	require.NoError(t, err)
	require.Equal(t, activeYear.ID, latest.ID)
}

func TestSchoolYearStatsCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	db := setupYearDB(t)
	svc := newYearService(t, db, redisClient)

	year, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2026-2027"}, ActivityActor{})
	require.NoError(t, err)

	program := models.Program{Name: "Viet Ngu"}
	require.NoError(t, db.Create(&program).Error)
	require.NoError(t, db.Create(&models.Class{ID: uuid.New(), Name: "Viet Ngu 1", ProgramID: program.ID, AcademicYearID: year.ID}).Error)
	server.FlushAll()

	fresh, err := svc.Get(context.Background(), year.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), fresh.ClassCount)

	// Counts are now served from the cache even after the class goes away.
	require.NoError(t, db.Exec("DELETE FROM classes WHERE academic_year_id = ?", year.ID).Error)
	cached, err := svc.Get(context.Background(), year.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), cached.ClassCount)
}

func TestSchoolYearCheckTransition(t *testing.T) {
	db := setupYearDB(t)
	svc := newYearService(t, db, nil)

	check, err := svc.CheckTransition(context.Background())
	require.NoError(t, err)
	require.False(t, check.ShouldTransition)

	past := time.Now().AddDate(0, -1, 0).Format(time.DateOnly)
	year, err := svc.Create(context.Background(), dto.SchoolYearCreateRequest{Name: "2026-2027", TransitionDate: &past}, ActivityActor{})
	require.NoError(t, err)

	check, err = svc.CheckTransition(context.Background())
	require.NoError(t, err)
	require.True(t, check.ShouldTransition)
	require.NotNil(t, check.YearID)
	require.Equal(t, year.ID, *check.YearID)
}
