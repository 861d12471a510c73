package service

import (
	"time"

	"tutomatics/internal/models"
)

// WithinAvailability reports whether the interval [start, end) falls inside
// the tutor's declared hours. A tutor with no declared windows is available
// at all times; this permissive default covers an admin who has not yet
// configured hours. Otherwise a single window must fully contain the
// booking's time-of-day range: a lesson spanning two adjacent windows is
// rejected even though every minute of it is covered.
//
// Windows are matched by time of day only. The stored repeat rule does not
// restrict which calendar days a window applies to.
func WithinAvailability(windows []models.Availability, start, end time.Time) bool {
	if len(windows) == 0 {
		return true
	}

	startMin := models.MinutesOfDay(start)
	// Derive the end from the duration so a lesson ending exactly at
	// midnight compares as 24:00, not 00:00.
	endMin := startMin + int(end.Sub(start).Minutes())

	for i := range windows {
		if windows[i].Contains(startMin, endMin) {
			return true
		}
	}
	return false
}
