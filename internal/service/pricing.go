package service

import (
	"tutomatics/internal/database"
	"tutomatics/internal/models"
)

// Price returns the lesson price in euros for a duration in minutes: a flat
// base for the first two hours plus a surcharge per additional full hour.
// Durations that are not a whole number of hours are floored, not rejected;
// the booking path rejects them separately before pricing.
func Price(durationMinutes int) (int, error) {
	if durationMinutes < models.MinLessonMinutes {
		return 0, database.ErrInvalidDuration
	}
	extraHours := (durationMinutes - models.MinLessonMinutes) / 60
	return models.BasePriceEUR + models.ExtraHourPriceEUR*extraHours, nil
}
