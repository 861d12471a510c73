package service

import (
	"context"
	"fmt"
	"time"

	"tutomatics/internal/database"
	"tutomatics/internal/domain"
	"tutomatics/internal/events"
	"tutomatics/internal/models"

	"github.com/rs/zerolog"
)

// BookingService is the booking-conflict and pricing engine. Callers resolve
// identity and authorization before invoking it; the service receives plain
// IDs and validated primitives, never ambient session state.
type BookingService struct {
	repo                domain.Repository
	availability        *AvailabilityService
	eventBus            domain.EventPublisher
	syncWorker          domain.SyncWorker
	enforceAvailability bool
	logger              *zerolog.Logger
}

func NewBookingService(
	repo domain.Repository,
	availability *AvailabilityService,
	eventBus domain.EventPublisher,
	syncWorker domain.SyncWorker,
	enforceAvailability bool,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		repo:                repo,
		availability:        availability,
		eventBus:            eventBus,
		syncWorker:          syncWorker,
		enforceAvailability: enforceAvailability,
		logger:              logger,
	}
}

// ProposeBooking validates a requested slot and records it as a pending
// booking. Checks run in a fixed order and the first failure wins; nothing
// is written unless every check passes.
func (s *BookingService) ProposeBooking(ctx context.Context, studentID int64, startTime time.Time, durationMinutes int) (*models.Booking, error) {
	if durationMinutes < models.MinLessonMinutes || durationMinutes > models.MaxLessonMinutes {
		return nil, database.ErrInvalidDuration
	}
	if durationMinutes%models.LessonStepMinutes != 0 {
		return nil, database.ErrInvalidDuration
	}

	start := startTime.UTC()
	if start.Before(time.Now().UTC()) {
		return nil, database.ErrPastTimeSlot
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	price, err := Price(durationMinutes)
	if err != nil {
		return nil, err
	}

	tutor, err := s.repo.GetTutor(ctx)
	if err != nil {
		return nil, err
	}

	// Only accepted bookings hold a slot; pending requests for the same
	// range are allowed to pile up until one of them is accepted.
	accepted, err := s.repo.GetAcceptedBookingsForTutor(ctx, tutor.ID)
	if err != nil {
		return nil, fmt.Errorf("get accepted bookings: %w", err)
	}
	for i := range accepted {
		if Overlaps(start, end, accepted[i].StartTime.UTC(), accepted[i].EndTime.UTC()) {
			return nil, database.ErrSlotConflict
		}
	}

	if s.enforceAvailability {
		within, err := s.availability.IsWithinAvailability(ctx, tutor.ID, start, end)
		if err != nil {
			return nil, err
		}
		if !within {
			return nil, database.ErrOutsideAvailability
		}
	}

	booking := &models.Booking{
		StudentID:     studentID,
		TutorID:       tutor.ID,
		StartTime:     start,
		EndTime:       end,
		LessonMinutes: durationMinutes,
		PriceEUR:      price,
		Status:        models.BookingStatusPending,
	}

	// The insert re-runs the overlap check in its transaction, so a slot
	// accepted between the read above and the write cannot slip through.
	if err := s.repo.CreateBookingChecked(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingRequested, booking, studentID)
	s.enqueueSync(ctx, events.SyncTaskUpsert, booking)

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("student_id", studentID).
		Time("start_time", booking.StartTime).
		Int("lesson_minutes", durationMinutes).
		Int("price_eur", price).
		Msg("booking requested")

	return booking, nil
}

// AcceptBooking transitions a pending booking to accepted. The conflict check
// runs again at transition time: of two overlapping pending requests only the
// first acceptance commits, the second fails with a slot conflict.
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID, actorID int64) (*models.Booking, error) {
	booking, err := s.repo.AcceptBookingWithLock(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, booking.StudentID, fmt.Sprintf("Your booking for %s was accepted.",
		booking.StartTime.UTC().Format("Mon, Jan 2 15:04")))
	s.publishEvent(events.EventBookingAccepted, booking, actorID)
	s.enqueueSync(ctx, events.SyncTaskUpdateStatus, booking)

	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("actor_id", actorID).
		Msg("booking accepted")

	return booking, nil
}

// DenyBooking transitions a pending booking to denied.
func (s *BookingService) DenyBooking(ctx context.Context, bookingID, actorID int64) error {
	if err := s.repo.DenyBooking(ctx, bookingID); err != nil {
		return err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err == nil {
		s.notify(ctx, booking.StudentID, fmt.Sprintf("Your booking for %s was denied.",
			booking.StartTime.UTC().Format("Mon, Jan 2 15:04")))
		s.publishEvent(events.EventBookingDenied, booking, actorID)
		s.enqueueSync(ctx, events.SyncTaskUpdateStatus, booking)
	}

	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("actor_id", actorID).
		Msg("booking denied")

	return nil
}

// CancelBooking cancels a pending or accepted booking. Whether the actor is
// the student or the tutor is the caller's policy; the engine only records
// the transition.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID int64) error {
	if err := s.repo.CancelBooking(ctx, bookingID); err != nil {
		return err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err == nil {
		s.publishEvent(events.EventBookingCancelled, booking, actorID)
		s.enqueueSync(ctx, events.SyncTaskUpdateStatus, booking)
	}

	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("actor_id", actorID).
		Msg("booking cancelled")

	return nil
}

// GetBooking returns a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// GetBookingsByDateRange returns bookings starting within [start, end].
func (s *BookingService) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	return s.repo.GetBookingsByDateRange(ctx, start.UTC(), end.UTC())
}

// GetStudentBookings returns the student's bookings, newest first.
func (s *BookingService) GetStudentBookings(ctx context.Context, studentID int64) ([]models.Booking, error) {
	return s.repo.GetStudentBookings(ctx, studentID)
}

// GetDailyBookings groups bookings in the range by calendar day.
func (s *BookingService) GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]models.Booking, error) {
	return s.repo.GetDailyBookings(ctx, start.UTC(), end.UTC())
}

func (s *BookingService) notify(ctx context.Context, userID int64, message string) {
	n := &models.Notification{UserID: userID, Message: message}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("enqueue notification")
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		StudentID: booking.StudentID,
		TutorID:   booking.TutorID,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		PriceEUR:  booking.PriceEUR,
		Status:    booking.Status,
		ActorID:   actorID,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("publish event")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, booking *models.Booking) {
	if s.syncWorker == nil {
		return
	}
	if err := s.syncWorker.EnqueueBookingSync(ctx, taskType, booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("enqueue sheet sync")
	}
}
