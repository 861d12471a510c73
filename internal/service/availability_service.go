package service

import (
	"context"
	"time"

	"tutomatics/internal/database"
	"tutomatics/internal/domain"
	"tutomatics/internal/models"

	"github.com/rs/zerolog"
)

// AvailabilityService manages tutor availability windows and answers whether
// a candidate interval falls inside declared hours. Window reads go through
// a cache because the calendar and the booking path hit them far more often
// than a tutor edits them.
type AvailabilityService struct {
	repo   domain.Repository
	cache  domain.AvailabilityCache
	logger *zerolog.Logger
}

func NewAvailabilityService(repo domain.Repository, cache domain.AvailabilityCache, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// CreateWindow declares an availability window for its owner.
func (s *AvailabilityService) CreateWindow(ctx context.Context, window *models.Availability) error {
	startMin, err := models.ClockMinutes(window.StartTime)
	if err != nil {
		return database.ErrInvalidWindow
	}
	endMin, err := models.ClockMinutes(window.EndTime)
	if err != nil {
		return database.ErrInvalidWindow
	}
	if startMin >= endMin {
		return database.ErrInvalidWindow
	}
	if window.RepeatRule == "" {
		window.RepeatRule = models.RepeatNone
	}
	if !models.ValidRepeatRule(window.RepeatRule) {
		return database.ErrInvalidWindow
	}

	if err := s.repo.CreateAvailability(ctx, window); err != nil {
		return err
	}
	s.invalidate(ctx, window.TutorID)

	s.logger.Info().
		Int64("window_id", window.ID).
		Int64("tutor_id", window.TutorID).
		Str("start", window.StartTime).
		Str("end", window.EndTime).
		Msg("availability window created")
	return nil
}

// ListWindows returns the tutor's declared windows.
func (s *AvailabilityService) ListWindows(ctx context.Context, tutorID int64) ([]models.Availability, error) {
	return s.windows(ctx, tutorID)
}

// DeleteWindow removes a window; only its owner may do so.
func (s *AvailabilityService) DeleteWindow(ctx context.Context, id, ownerID int64) error {
	if err := s.repo.DeleteAvailability(ctx, id, ownerID); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	return nil
}

// IsWithinAvailability reports whether [start, end) falls inside the tutor's
// declared hours. No declared windows means always available.
func (s *AvailabilityService) IsWithinAvailability(ctx context.Context, tutorID int64, start, end time.Time) (bool, error) {
	windows, err := s.windows(ctx, tutorID)
	if err != nil {
		return false, err
	}
	return WithinAvailability(windows, start.UTC(), end.UTC()), nil
}

func (s *AvailabilityService) windows(ctx context.Context, tutorID int64) ([]models.Availability, error) {
	if s.cache != nil {
		windows, ok, err := s.cache.Get(ctx, tutorID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("tutor_id", tutorID).Msg("availability cache read failed")
		} else if ok {
			return windows, nil
		}
	}

	windows, err := s.repo.GetAvailabilityByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tutorID, windows); err != nil {
			s.logger.Warn().Err(err).Int64("tutor_id", tutorID).Msg("availability cache write failed")
		}
	}
	return windows, nil
}

func (s *AvailabilityService) invalidate(ctx context.Context, tutorID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tutorID); err != nil {
		s.logger.Warn().Err(err).Int64("tutor_id", tutorID).Msg("availability cache invalidation failed")
	}
}
