package database

import "errors"

// Engine failures are returned as typed sentinels so the API layer can map
// them onto response codes with errors.Is.
var (
	// User-correctable failures.
	ErrInvalidDuration     = errors.New("lesson duration is invalid")
	ErrPastTimeSlot        = errors.New("cannot book past time slots")
	ErrSlotConflict        = errors.New("this time slot is already booked")
	ErrOutsideAvailability = errors.New("requested slot is outside tutor availability")

	// Service misconfiguration, not user error.
	ErrNoTutorAvailable = errors.New("no tutor available")

	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrWindowNotFound  = errors.New("availability window not found")

	ErrBookingNotPending = errors.New("booking is not pending")
	ErrBookingNotActive  = errors.New("booking is not active")
	ErrNotOwner          = errors.New("no permission to modify this record")

	ErrEmailTaken    = errors.New("that email is already registered")
	ErrUsernameTaken = errors.New("that username is already taken")

	ErrInvalidWindow = errors.New("availability window is invalid")
)
