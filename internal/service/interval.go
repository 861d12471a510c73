package service

import (
	"time"

	"tutomatics/internal/database"
)

// TimeInterval is a half-open instant range [Start, End).
type TimeInterval struct {
	Start time.Time
	End   time.Time
}

func (i TimeInterval) Validate() error {
	if !i.Start.Before(i.End) {
		return database.ErrInvalidWindow
	}
	return nil
}

// Overlaps reports whether the half-open ranges [startA, endA) and
// [startB, endB) intersect. Touching ranges (endA == startB) do not overlap.
// All instants are compared in a single reference frame; callers normalize
// to UTC before comparison.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}
