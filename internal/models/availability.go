package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Availability is a tutor-declared recurring time-of-day window during which
// bookings may be accepted. Windows carry no date: StartTime and EndTime are
// "HH:MM" clock values and the repeat rule is stored but not used to restrict
// which calendar days a window applies to.
type Availability struct {
	ID          int64      `json:"id"`
	TutorID     int64      `json:"tutor_id"`
	StartTime   string     `json:"start_time"` // "HH:MM"
	EndTime     string     `json:"end_time"`   // "HH:MM"
	RepeatRule  string     `json:"repeat_rule"`
	RepeatUntil *time.Time `json:"repeat_until,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Contains reports whether the window fully covers the time-of-day range
// [startMin, endMin], both in minutes since midnight. A booking that spans
// two adjacent windows is not covered by either one.
func (a *Availability) Contains(startMin, endMin int) bool {
	winStart, err := ClockMinutes(a.StartTime)
	if err != nil {
		return false
	}
	winEnd, err := ClockMinutes(a.EndTime)
	if err != nil {
		return false
	}
	return winStart <= startMin && endMin <= winEnd
}

// ClockMinutes parses an "HH:MM" clock value into minutes since midnight.
// "24:00" is accepted as the end-of-day bound.
func ClockMinutes(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// MinutesOfDay returns the minutes elapsed since midnight UTC for t.
func MinutesOfDay(t time.Time) int {
	t = t.UTC()
	return t.Hour()*60 + t.Minute()
}

// ValidRepeatRule reports whether rule is one of the supported repeat rules.
func ValidRepeatRule(rule string) bool {
	switch rule {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}
