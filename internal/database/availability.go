package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tutomatics/internal/models"
)

const availabilityColumns = `id, tutor_id, start_time, end_time, repeat_rule, repeat_until, created_at`

// CreateAvailability inserts a declared availability window. Overlapping
// windows for the same tutor are permitted.
func (db *DB) CreateAvailability(ctx context.Context, window *models.Availability) error {
	query := `INSERT INTO availability (tutor_id, start_time, end_time, repeat_rule, repeat_until, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		window.TutorID,
		window.StartTime,
		window.EndTime,
		window.RepeatRule,
		window.RepeatUntil,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability window: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	window.ID = id
	window.CreatedAt = now
	return nil
}

// GetAvailabilityByTutor returns all windows declared by the tutor.
func (db *DB) GetAvailabilityByTutor(ctx context.Context, tutorID int64) ([]models.Availability, error) {
	query := `SELECT ` + availabilityColumns + ` FROM availability
              WHERE tutor_id = ? ORDER BY start_time`

	rows, err := db.QueryContext(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	var windows []models.Availability
	for rows.Next() {
		var w models.Availability
		err := rows.Scan(
			&w.ID,
			&w.TutorID,
			&w.StartTime,
			&w.EndTime,
			&w.RepeatRule,
			&w.RepeatUntil,
			&w.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan availability window: %w", err)
		}
		windows = append(windows, w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate availability windows: %w", err)
	}
	return windows, nil
}

// GetAvailability returns a window by ID.
func (db *DB) GetAvailability(ctx context.Context, id int64) (*models.Availability, error) {
	query := `SELECT ` + availabilityColumns + ` FROM availability WHERE id = ?`

	var w models.Availability
	err := db.QueryRowContext(ctx, query, id).Scan(
		&w.ID,
		&w.TutorID,
		&w.StartTime,
		&w.EndTime,
		&w.RepeatRule,
		&w.RepeatUntil,
		&w.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWindowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability window: %w", err)
	}
	return &w, nil
}

// DeleteAvailability removes a window owned by ownerID. Only the owner may
// delete their windows.
func (db *DB) DeleteAvailability(ctx context.Context, id, ownerID int64) error {
	window, err := db.GetAvailability(ctx, id)
	if err != nil {
		return err
	}
	if window.TutorID != ownerID {
		return ErrNotOwner
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM availability WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete availability window: %w", err)
	}
	return nil
}
