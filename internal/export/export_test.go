package export

import (
	"bytes"
	"testing"
	"time"

	"tutomatics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookingsReport(t *testing.T) {
	day1 := time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2030, 6, 2, 14, 0, 0, 0, time.UTC)

	daily := map[string][]models.Booking{
		"2030-06-02": {
			{ID: 2, StudentID: 5, StartTime: day2, EndTime: day2.Add(3 * time.Hour), LessonMinutes: 180, PriceEUR: 150, Status: models.BookingStatusPending},
		},
		"2030-06-01": {
			{ID: 1, StudentID: 3, StartTime: day1, EndTime: day1.Add(2 * time.Hour), LessonMinutes: 120, PriceEUR: 100, Status: models.BookingStatusAccepted},
		},
	}

	var buf bytes.Buffer
	start := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, WriteBookingsReport(&buf, daily, start, end))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	period, err := f.GetCellValue("Bookings", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Period: 01.06.2030 - 03.06.2030", period)

	header, err := f.GetCellValue("Bookings", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	// Days come out sorted, earliest first.
	firstDay, err := f.GetCellValue("Bookings", "A3")
	require.NoError(t, err)
	assert.Equal(t, "2030-06-01", firstDay)

	firstStatus, err := f.GetCellValue("Bookings", "H3")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, firstStatus)

	secondID, err := f.GetCellValue("Bookings", "B4")
	require.NoError(t, err)
	assert.Equal(t, "2", secondID)

	secondStart, err := f.GetCellValue("Bookings", "D4")
	require.NoError(t, err)
	assert.Equal(t, "14:00", secondStart)

	// The default sheet is dropped in favor of Bookings.
	assert.NotContains(t, f.GetSheetList(), "Sheet1")
}

func TestWriteBookingsReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, WriteBookingsReport(&buf, nil, start, start.AddDate(0, 0, 7)))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Bookings", "H2")
	require.NoError(t, err)
	assert.Equal(t, "Status", header)
}
