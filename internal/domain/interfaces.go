package domain

import (
	"context"
	"time"

	"tutomatics/internal/models"
)

// Repository is the persistence surface the services depend on. The concrete
// implementation lives in internal/database.
type Repository interface {
	CreateBookingChecked(ctx context.Context, booking *models.Booking) error
	AcceptBookingWithLock(ctx context.Context, bookingID int64) (*models.Booking, error)
	DenyBooking(ctx context.Context, bookingID int64) error
	CancelBooking(ctx context.Context, bookingID int64) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetAcceptedBookingsForTutor(ctx context.Context, tutorID int64) ([]models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error)
	GetStudentBookings(ctx context.Context, studentID int64) ([]models.Booking, error)
	GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]models.Booking, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetTutor(ctx context.Context) (*models.User, error)
	GetUsersByStatus(ctx context.Context, status string) ([]models.User, error)
	ApproveUser(ctx context.Context, id int64) error
	DeleteUser(ctx context.Context, id int64) error

	CreateAvailability(ctx context.Context, window *models.Availability) error
	GetAvailabilityByTutor(ctx context.Context, tutorID int64) ([]models.Availability, error)
	GetAvailability(ctx context.Context, id int64) (*models.Availability, error)
	DeleteAvailability(ctx context.Context, id, ownerID int64) error

	CreateNotification(ctx context.Context, n *models.Notification) error
	GetUserNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
}

// AvailabilityCache caches a tutor's declared windows in front of the store.
type AvailabilityCache interface {
	Get(ctx context.Context, tutorID int64) ([]models.Availability, bool, error)
	Set(ctx context.Context, tutorID int64, windows []models.Availability) error
	Invalidate(ctx context.Context, tutorID int64) error
}

// EventPublisher emits domain events for in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker accepts booking synchronization jobs for the spreadsheet.
type SyncWorker interface {
	EnqueueBookingSync(ctx context.Context, taskType string, booking *models.Booking) error
}
