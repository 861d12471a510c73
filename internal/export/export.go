package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"tutomatics/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

// WriteBookingsReport renders daily bookings into an xlsx workbook and writes
// it to w. Days come out in ascending order, one row per booking.
func WriteBookingsReport(w io.Writer, dailyBookings map[string][]models.Booking, startDate, endDate time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))

	headers := []string{"Date", "Booking ID", "Student ID", "Start", "End", "Minutes", "Price EUR", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	days := make([]string, 0, len(dailyBookings))
	for day := range dailyBookings {
		days = append(days, day)
	}
	sort.Strings(days)

	row := 3
	for _, day := range days {
		for _, booking := range dailyBookings[day] {
			values := []any{
				day,
				booking.ID,
				booking.StudentID,
				booking.StartTime.Format("15:04"),
				booking.EndTime.Format("15:04"),
				booking.LessonMinutes,
				booking.PriceEUR,
				booking.Status,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(sheetName, cell, v)
			}
			row++
		}
	}

	_ = f.SetColWidth(sheetName, "A", "H", 14)
	_ = f.MergeCell(sheetName, "A1", "H1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing file: %v", err)
	}
	return nil
}
