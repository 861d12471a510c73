package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tutomatics/internal/models"
)

const bookingColumns = `id, student_id, tutor_id, start_time, end_time, lesson_minutes, price_eur, status, created_at, updated_at`

// CreateBookingChecked inserts a pending booking after verifying inside a
// transaction that the slot does not overlap any accepted booking for the
// tutor. Pending bookings never block each other.
func (db *DB) CreateBookingChecked(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	count, err := countAcceptedOverlaps(ctx, tx, booking.TutorID, booking.StartTime, booking.EndTime, 0)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSlotConflict
	}

	query := `INSERT INTO bookings (
				student_id, tutor_id, start_time, end_time,
				lesson_minutes, price_eur, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		booking.StudentID,
		booking.TutorID,
		formatTime(booking.StartTime),
		formatTime(booking.EndTime),
		booking.LessonMinutes,
		booking.PriceEUR,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

// AcceptBookingWithLock transitions a pending booking to accepted. The overlap
// check against accepted bookings is re-run inside the per-tutor lock and the
// transaction, so concurrent acceptances of overlapping slots cannot both
// commit.
func (db *DB) AcceptBookingWithLock(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := db.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	unlock := db.lockTutor(booking.TutorID)
	defer unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Re-read inside the transaction: status may have changed since the load.
	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, bookingID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read booking status: %w", err)
	}
	if status != models.BookingStatusPending {
		return nil, ErrBookingNotPending
	}

	count, err := countAcceptedOverlaps(ctx, tx, booking.TutorID, booking.StartTime, booking.EndTime, bookingID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlotConflict
	}

	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		models.BookingStatusAccepted, now, bookingID, models.BookingStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to accept booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrBookingNotPending
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit acceptance: %w", err)
	}

	booking.Status = models.BookingStatusAccepted
	booking.UpdatedAt = now
	return booking, nil
}

// DenyBooking transitions a pending booking to denied.
func (db *DB) DenyBooking(ctx context.Context, bookingID int64) error {
	return db.transition(ctx, bookingID, models.BookingStatusDenied,
		[]string{models.BookingStatusPending}, ErrBookingNotPending)
}

// CancelBooking transitions a pending or accepted booking to cancelled.
func (db *DB) CancelBooking(ctx context.Context, bookingID int64) error {
	return db.transition(ctx, bookingID, models.BookingStatusCancelled,
		[]string{models.BookingStatusPending, models.BookingStatusAccepted}, ErrBookingNotActive)
}

func (db *DB) transition(ctx context.Context, bookingID int64, to string, from []string, stateErr error) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status IN (?`
	args := []interface{}{to, time.Now(), bookingID, from[0]}
	for _, s := range from[1:] {
		query += ", ?"
		args = append(args, s)
	}
	query += ")"

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		if _, err := db.GetBooking(ctx, bookingID); errors.Is(err, ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		return stateErr
	}
	return nil
}

func countAcceptedOverlaps(ctx context.Context, tx *sql.Tx, tutorID int64, start, end time.Time, excludeID int64) (int, error) {
	query := `SELECT COUNT(*) FROM bookings
              WHERE tutor_id = ? AND status = ? AND id != ?
              AND datetime(start_time) < datetime(?)
              AND datetime(end_time) > datetime(?)`
	var count int
	err := tx.QueryRowContext(ctx, query,
		tutorID, models.BookingStatusAccepted, excludeID,
		formatTime(end), formatTime(start),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to check slot conflicts: %w", err)
	}
	return count, nil
}

// GetBooking returns a booking by ID.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	var booking models.Booking
	err := db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.TutorID,
		&booking.StartTime,
		&booking.EndTime,
		&booking.LessonMinutes,
		&booking.PriceEUR,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetAcceptedBookingsForTutor returns all accepted bookings for the tutor,
// ordered by start time.
func (db *DB) GetAcceptedBookingsForTutor(ctx context.Context, tutorID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE tutor_id = ? AND status = ?
              ORDER BY start_time`
	return db.queryBookings(ctx, query, tutorID, models.BookingStatusAccepted)
}

// GetBookingsByDateRange returns bookings whose start falls within [start, end].
func (db *DB) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE datetime(start_time) >= datetime(?) AND datetime(start_time) <= datetime(?)
              ORDER BY start_time, created_at`
	return db.queryBookings(ctx, query, formatTime(start), formatTime(end))
}

// GetStudentBookings returns all bookings requested by the student, newest first.
func (db *DB) GetStudentBookings(ctx context.Context, studentID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE student_id = ?
              ORDER BY created_at DESC`
	return db.queryBookings(ctx, query, studentID)
}

// GetDailyBookings groups bookings in the range by day key (YYYY-MM-DD).
func (db *DB) GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]models.Booking, error) {
	bookings, err := db.GetBookingsByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]models.Booking)
	for _, booking := range bookings {
		key := booking.StartTime.UTC().Format("2006-01-02")
		daily[key] = append(daily[key], booking)
	}
	return daily, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.StudentID,
			&booking.TutorID,
			&booking.StartTime,
			&booking.EndTime,
			&booking.LessonMinutes,
			&booking.PriceEUR,
			&booking.Status,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}
