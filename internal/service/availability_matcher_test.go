package service

import (
	"testing"
	"time"

	"tutomatics/internal/models"

	"github.com/stretchr/testify/assert"
)

func window(start, end string) models.Availability {
	return models.Availability{TutorID: 1, StartTime: start, EndTime: end}
}

func TestWithinAvailability(t *testing.T) {
	day := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		windows  []models.Availability
		start    time.Time
		end      time.Time
		expected bool
	}{
		{
			name:     "NoWindowsAlwaysAvailable",
			windows:  nil,
			start:    day.Add(3 * time.Hour),
			end:      day.Add(5 * time.Hour),
			expected: true,
		},
		{
			name:     "InsideWindow",
			windows:  []models.Availability{window("09:00", "18:00")},
			start:    day.Add(10 * time.Hour),
			end:      day.Add(12 * time.Hour),
			expected: true,
		},
		{
			name:     "ExactWindowBounds",
			windows:  []models.Availability{window("09:00", "11:00")},
			start:    day.Add(9 * time.Hour),
			end:      day.Add(11 * time.Hour),
			expected: true,
		},
		{
			name:     "StartsBeforeWindow",
			windows:  []models.Availability{window("09:00", "18:00")},
			start:    day.Add(8 * time.Hour),
			end:      day.Add(10 * time.Hour),
			expected: false,
		},
		{
			name:     "EndsAfterWindow",
			windows:  []models.Availability{window("09:00", "11:00")},
			start:    day.Add(10 * time.Hour),
			end:      day.Add(12 * time.Hour),
			expected: false,
		},
		{
			name: "SpansTwoAdjacentWindows",
			windows: []models.Availability{
				window("09:00", "12:00"),
				window("12:00", "15:00"),
			},
			start:    day.Add(11 * time.Hour),
			end:      day.Add(13 * time.Hour),
			expected: false,
		},
		{
			name: "SecondWindowMatches",
			windows: []models.Availability{
				window("06:00", "08:00"),
				window("14:00", "20:00"),
			},
			start:    day.Add(15 * time.Hour),
			end:      day.Add(17 * time.Hour),
			expected: true,
		},
		{
			name:     "LessonEndingAtMidnight",
			windows:  []models.Availability{window("20:00", "24:00")},
			start:    day.Add(22 * time.Hour),
			end:      day.Add(24 * time.Hour),
			expected: true,
		},
		{
			name:     "MalformedWindowIgnored",
			windows:  []models.Availability{window("garbage", "12:00")},
			start:    day.Add(10 * time.Hour),
			end:      day.Add(11 * time.Hour),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithinAvailability(tt.windows, tt.start, tt.end)
			assert.Equal(t, tt.expected, got)
		})
	}
}
