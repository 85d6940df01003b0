package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/observability"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
)

// Sentinel errors surfaced by the school year lifecycle.
var (
	ErrSchoolYearNotFound  = errors.New("school year not found")
	ErrSchoolYearDuplicate = errors.New("school year name already exists")
	ErrSchoolYearHasClass  = errors.New("school year has associated classes")
)

// DeriveSchoolYearStatus computes a year's status from its stored flags and
// the given date. The status is derived at query time and never persisted.
// Rule order: explicit active flag, future transition date, past end year,
// future start year, then the upcoming default. The final fallback is
// "upcoming" even for a year whose dates have already begun; an inactive
// year only reads as active once an explicit transition flips the flag.
func DeriveSchoolYearStatus(year models.AcademicYear, today time.Time) string {
	if year.IsActive {
		return models.SchoolYearStatusActive
	}

	if year.TransitionDate != nil && year.TransitionDate.After(today) {
		return models.SchoolYearStatusUpcoming
	}

	if year.EndYear != 0 && year.EndYear < today.Year() {
		return models.SchoolYearStatusArchived
	}

	if year.StartYear != 0 && year.StartYear > today.Year() {
		return models.SchoolYearStatusUpcoming
	}

	return models.SchoolYearStatusUpcoming
}

// ParseYearLabel splits a "YYYY-YYYY" label into start and end years.
// Returns (0, 0) when the label does not follow that shape.
func ParseYearLabel(name string) (int, int) {
	parts := strings.Split(strings.TrimSpace(name), "-")
	if len(parts) != 2 {
		return 0, 0
	}

	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0
	}

	return start, end
}

// SchoolYearService manages the academic year lifecycle.
type SchoolYearService interface {
	List(ctx context.Context, includeArchived bool) ([]dto.SchoolYearResponse, error)
	Get(ctx context.Context, id uint) (dto.SchoolYearResponse, error)
	Newest(ctx context.Context) (dto.SchoolYearResponse, error)
	ActiveOrLatest(ctx context.Context) (models.AcademicYear, error)
	ActiveOrLatestResponse(ctx context.Context) (dto.SchoolYearResponse, error)
	Create(ctx context.Context, req dto.SchoolYearCreateRequest, actor ActivityActor) (dto.SchoolYearResponse, error)
	Update(ctx context.Context, id uint, req dto.SchoolYearUpdateRequest, actor ActivityActor) (dto.SchoolYearResponse, error)
	Transition(ctx context.Context, req dto.SchoolYearTransitionRequest, actor ActivityActor) (dto.SchoolYearTransitionResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
	CheckAutoCreate(ctx context.Context) (dto.AutoCreateCheckResponse, error)
	CheckTransition(ctx context.Context) (dto.TransitionCheckResponse, error)
}

type schoolYearService struct {
	repo      repository.SchoolYearRepository
	validator *validator.Validate
	cache     *redis.Client
	cacheTTL  time.Duration
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewSchoolYearService constructs the school year service.
func NewSchoolYearService(repo repository.SchoolYearRepository, validate *validator.Validate, cache *redis.Client, cacheTTL time.Duration, activity ActivityRecorder, logger zerolog.Logger) SchoolYearService {
	return &schoolYearService{
		repo:      repo,
		validator: validate,
		cache:     cache,
		cacheTTL:  cacheTTL,
		activity:  activity,
		logger:    logger.With().Str("component", "school_year_service").Logger(),
	}
}

type yearStats struct {
	ClassCount    int64 `json:"class_count"`
	EnrolledCount int64 `json:"enrolled_count"`
}

func (s *schoolYearService) statsFor(ctx context.Context, yearID uint) (yearStats, error) {
	cacheKey := fmt.Sprintf("school_year:stats:%d", yearID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var stats yearStats
			if unmarshalErr := json.Unmarshal([]byte(cached), &stats); unmarshalErr == nil {
				return stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read school year stats cache")
		}
	}

	classCount, err := s.repo.ClassCount(ctx, yearID)
	if err != nil {
		return yearStats{}, err
	}
	enrolledCount, err := s.repo.EnrollmentCount(ctx, yearID)
	if err != nil {
		return yearStats{}, err
	}

	stats := yearStats{ClassCount: classCount, EnrolledCount: enrolledCount}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(stats); marshalErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store school year stats cache")
			}
		}
	}

	return stats, nil
}

func (s *schoolYearService) invalidateStats(ctx context.Context, yearID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fmt.Sprintf("school_year:stats:%d", yearID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("year_id", yearID).Msg("failed to invalidate stats cache")
	}
}

func (s *schoolYearService) respond(ctx context.Context, year models.AcademicYear) (dto.SchoolYearResponse, error) {
	stats, err := s.statsFor(ctx, year.ID)
	if err != nil {
		return dto.SchoolYearResponse{}, err
	}
	status := DeriveSchoolYearStatus(year, time.Now())
	return dto.NewSchoolYearResponse(year, status, stats.ClassCount, stats.EnrolledCount), nil
}

func (s *schoolYearService) List(ctx context.Context, includeArchived bool) ([]dto.SchoolYearResponse, error) {
	years, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]dto.SchoolYearResponse, 0, len(years))
	for _, year := range years {
		status := DeriveSchoolYearStatus(year, now)
		if status == models.SchoolYearStatusArchived && !includeArchived {
			continue
		}

		stats, err := s.statsFor(ctx, year.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewSchoolYearResponse(year, status, stats.ClassCount, stats.EnrolledCount))
	}

	return responses, nil
}

func (s *schoolYearService) Get(ctx context.Context, id uint) (dto.SchoolYearResponse, error) {
	year, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolYearResponse{}, ErrSchoolYearNotFound
		}
		return dto.SchoolYearResponse{}, err
	}

	return s.respond(ctx, year)
}

func (s *schoolYearService) Newest(ctx context.Context) (dto.SchoolYearResponse, error) {
	year, err := s.repo.Newest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolYearResponse{}, ErrSchoolYearNotFound
		}
		return dto.SchoolYearResponse{}, err
	}

	return s.respond(ctx, year)
}

// ActiveOrLatest returns the explicitly active year when one exists, else
// the year with the greatest (start_year, id).
func (s *schoolYearService) ActiveOrLatest(ctx context.Context) (models.AcademicYear, error) {
	year, err := s.repo.GetActive(ctx)
	if err == nil {
		return year, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AcademicYear{}, err
	}

	year, err = s.repo.Newest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AcademicYear{}, ErrSchoolYearNotFound
		}
		return models.AcademicYear{}, err
	}

	return year, nil
}

func (s *schoolYearService) ActiveOrLatestResponse(ctx context.Context) (dto.SchoolYearResponse, error) {
	year, err := s.ActiveOrLatest(ctx)
	if err != nil {
		return dto.SchoolYearResponse{}, err
	}
	return s.respond(ctx, year)
}

func (s *schoolYearService) Create(ctx context.Context, req dto.SchoolYearCreateRequest, actor ActivityActor) (dto.SchoolYearResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SchoolYearResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return dto.SchoolYearResponse{}, ErrSchoolYearDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SchoolYearResponse{}, err
	}

	startYear, endYear := ParseYearLabel(name)
	if req.StartYear != nil {
		startYear = *req.StartYear
	}
	if req.EndYear != nil {
		endYear = *req.EndYear
	}

	var transitionDate *time.Time
	if req.TransitionDate != nil {
		parsed, err := time.Parse(time.DateOnly, *req.TransitionDate)
		if err != nil {
			return dto.SchoolYearResponse{}, fmt.Errorf("invalid transition date: %w", err)
		}
		transitionDate = &parsed
	} else if startYear != 0 {
		// New years flip to active on July 1 unless told otherwise.
		defaulted := time.Date(startYear, time.July, 1, 0, 0, 0, 0, time.UTC)
		transitionDate = &defaulted
	}

	enrollmentOpen := true
	if req.EnrollmentOpen != nil {
		enrollmentOpen = *req.EnrollmentOpen
	}

	year := models.AcademicYear{
		Name:           name,
		StartYear:      startYear,
		EndYear:        endYear,
		IsCurrent:      req.IsCurrent,
		IsActive:       req.IsActive,
		EnrollmentOpen: enrollmentOpen,
		TransitionDate: transitionDate,
	}

	if year.IsActive {
		// Active implies current, and the previously active year must be
		// cleared before the insert so at most one active row ever exists.
		year.IsCurrent = true
		if err := s.repo.CreateActivating(ctx, &year); err != nil {
			return dto.SchoolYearResponse{}, err
		}
	} else if err := s.repo.Create(ctx, &year); err != nil {
		return dto.SchoolYearResponse{}, err
	}

	s.recordActivity(ctx, actor, "school_year.created", year.ID, map[string]interface{}{"name": year.Name})

	return s.respond(ctx, year)
}

func (s *schoolYearService) Update(ctx context.Context, id uint, req dto.SchoolYearUpdateRequest, actor ActivityActor) (dto.SchoolYearResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SchoolYearResponse{}, err
	}

	year, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolYearResponse{}, ErrSchoolYearNotFound
		}
		return dto.SchoolYearResponse{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != year.Name {
			if _, err := s.repo.GetByName(ctx, name); err == nil {
				return dto.SchoolYearResponse{}, ErrSchoolYearDuplicate
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SchoolYearResponse{}, err
			}
		}
		year.Name = name
	}
	if req.StartYear != nil {
		year.StartYear = *req.StartYear
	}
	if req.EndYear != nil {
		year.EndYear = *req.EndYear
	}
	if req.EnrollmentOpen != nil {
		year.EnrollmentOpen = *req.EnrollmentOpen
	}
	if req.TransitionDate != nil {
		parsed, err := time.Parse(time.DateOnly, *req.TransitionDate)
		if err != nil {
			return dto.SchoolYearResponse{}, fmt.Errorf("invalid transition date: %w", err)
		}
		year.TransitionDate = &parsed
	}
	if req.IsActive != nil {
		if *req.IsActive {
			// Activation must clear every other year first; at most one
			// year is active system-wide.
			if err := s.repo.DeactivateOthers(ctx, year.ID); err != nil {
				return dto.SchoolYearResponse{}, err
			}
		}
		year.IsActive = *req.IsActive
		year.IsCurrent = *req.IsActive
	}

	if err := s.repo.Save(ctx, &year); err != nil {
		return dto.SchoolYearResponse{}, err
	}

	s.invalidateStats(ctx, year.ID)
	s.recordActivity(ctx, actor, "school_year.updated", year.ID, map[string]interface{}{"name": year.Name})

	return s.respond(ctx, year)
}

func (s *schoolYearService) Transition(ctx context.Context, req dto.SchoolYearTransitionRequest, actor ActivityActor) (dto.SchoolYearTransitionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SchoolYearTransitionResponse{}, err
	}

	result, err := s.repo.Transition(ctx, req.NewActiveYearID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolYearTransitionResponse{}, ErrSchoolYearNotFound
		}
		return dto.SchoolYearTransitionResponse{}, err
	}

	year, err := s.repo.GetByID(ctx, result.NewActiveID)
	if err != nil {
		return dto.SchoolYearTransitionResponse{}, err
	}

	observability.SchoolYearTransitions().Inc()
	s.logger.Info().
		Uint("new_active_year_id", result.NewActiveID).
		Msg("school year transition completed")
	s.recordActivity(ctx, actor, "school_year.transitioned", result.NewActiveID, map[string]interface{}{
		"previous_active_year_id": result.PreviousActiveID,
	})

	return dto.SchoolYearTransitionResponse{
		Success:              true,
		Message:              fmt.Sprintf("Successfully transitioned to %s", year.Name),
		PreviousActiveYearID: result.PreviousActiveID,
		NewActiveYearID:      result.NewActiveID,
	}, nil
}

func (s *schoolYearService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSchoolYearNotFound
		}
		return err
	}

	classCount, err := s.repo.ClassCount(ctx, id)
	if err != nil {
		return err
	}
	if classCount > 0 {
		return ErrSchoolYearHasClass
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSchoolYearNotFound
		}
		return err
	}

	s.invalidateStats(ctx, id)
	s.recordActivity(ctx, actor, "school_year.deleted", id, nil)

	return nil
}

// CheckAutoCreate suggests creating next year's record during the
// January/February planning window.
func (s *schoolYearService) CheckAutoCreate(ctx context.Context) (dto.AutoCreateCheckResponse, error) {
	today := time.Now()
	month := today.Month()

	if month != time.January && month != time.February {
		return dto.AutoCreateCheckResponse{
			ShouldCreate: false,
			Reason:       "new year creation is only suggested in January-February",
		}, nil
	}

	label := fmt.Sprintf("%d-%d", today.Year(), today.Year()+1)

	existing, err := s.repo.GetByName(ctx, label)
	if err == nil {
		id := existing.ID
		return dto.AutoCreateCheckResponse{
			ShouldCreate:   false,
			Reason:         fmt.Sprintf("school year %s already exists", label),
			ExistingYearID: &id,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AutoCreateCheckResponse{}, err
	}

	return dto.AutoCreateCheckResponse{
		ShouldCreate:           true,
		Reason:                 fmt.Sprintf("school year %s does not exist and should be created", label),
		SuggestedName:          label,
		SuggestedStartYear:     today.Year(),
		SuggestedEndYear:       today.Year() + 1,
		SuggestedTransitionDay: fmt.Sprintf("%d-07-01", today.Year()),
	}, nil
}

// CheckTransition reports whether the newest inactive year's transition
// date has passed.
func (s *schoolYearService) CheckTransition(ctx context.Context) (dto.TransitionCheckResponse, error) {
	upcoming, err := s.repo.NewestInactiveWithTransition(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TransitionCheckResponse{
				ShouldTransition: false,
				Reason:           "no upcoming school year found with a transition date",
			}, nil
		}
		return dto.TransitionCheckResponse{}, err
	}

	today := time.Now()
	transitionDate := upcoming.TransitionDate.Format(time.DateOnly)
	id := upcoming.ID

	if !upcoming.TransitionDate.After(today) {
		return dto.TransitionCheckResponse{
			ShouldTransition: true,
			Reason:           fmt.Sprintf("transition date (%s) has passed", transitionDate),
			YearID:           &id,
			YearName:         upcoming.Name,
			TransitionDate:   &transitionDate,
		}, nil
	}

	days := int(time.Until(*upcoming.TransitionDate).Hours() / 24)
	return dto.TransitionCheckResponse{
		ShouldTransition:    false,
		Reason:              "transition date has not yet passed",
		YearID:              &id,
		YearName:            upcoming.Name,
		TransitionDate:      &transitionDate,
		DaysUntilTransition: &days,
	}, nil
}

func (s *schoolYearService) recordActivity(ctx context.Context, actor ActivityActor, action string, yearID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	_, _ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "school_year",
		EntityID:   strconv.FormatUint(uint64(yearID), 10),
		Metadata:   metadata,
	})
}
