package models

import "time"

type Booking struct {
	ID            int64     `json:"id"`
	StudentID     int64     `json:"student_id"`
	TutorID       int64     `json:"tutor_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	LessonMinutes int       `json:"lesson_minutes"`
	PriceEUR      int       `json:"price_eur"`
	Status        string    `json:"status"` // pending, accepted, denied, cancelled
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsActive reports whether the booking still occupies or may occupy a slot.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusAccepted
}

// DisplayColor returns the calendar color for the booking status.
func (b *Booking) DisplayColor() string {
	switch b.Status {
	case BookingStatusAccepted:
		return "green"
	case BookingStatusPending:
		return "yellow"
	case BookingStatusDenied:
		return "red"
	default:
		return "gray"
	}
}
