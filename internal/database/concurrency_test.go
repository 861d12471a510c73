package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tutomatics/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentAcceptance(t *testing.T) {
	logger := zerolog.Nop()
	dbPath := filepath.Join(t.TempDir(), "concurrency.db")
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	start := time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)

	// Ten pending requests for the same slot. Pending never blocks pending.
	const numBookings = 10
	ids := make([]int64, 0, numBookings)
	for i := 0; i < numBookings; i++ {
		b := testBooking(int64(i+1), start, 120)
		require.NoError(t, db.CreateBookingChecked(ctx, b))
		ids = append(ids, b.ID)
	}

	// Accept all of them concurrently. Exactly one acceptance may commit.
	var wg sync.WaitGroup
	wg.Add(numBookings)
	results := make(chan error, numBookings)

	for _, id := range ids {
		go func(bookingID int64) {
			defer wg.Done()
			_, err := db.AcceptBookingWithLock(ctx, bookingID)
			results <- err
		}(id)
	}

	wg.Wait()
	close(results)

	successCount := 0
	conflictCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, ErrSlotConflict):
			conflictCount++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successCount, "exactly one acceptance should succeed")
	assert.Equal(t, numBookings-1, conflictCount, "all other acceptances should conflict")

	// Verify in DB: one accepted, the rest still pending.
	bookings, err := db.GetBookingsByDateRange(ctx, start, start.Add(2*time.Hour))
	require.NoError(t, err)

	accepted := 0
	pending := 0
	for _, b := range bookings {
		switch b.Status {
		case models.BookingStatusAccepted:
			accepted++
		case models.BookingStatusPending:
			pending++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, numBookings-1, pending)
}

func TestConcurrentProposalsAgainstAccepted(t *testing.T) {
	logger := zerolog.Nop()
	dbPath := filepath.Join(t.TempDir(), "concurrency2.db")
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	start := time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)

	first := testBooking(1, start, 120)
	require.NoError(t, db.CreateBookingChecked(ctx, first))
	_, err = db.AcceptBookingWithLock(ctx, first.ID)
	require.NoError(t, err)

	const numGoroutines = 8
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			results <- db.CreateBookingChecked(ctx, testBooking(int64(id+100), start.Add(time.Hour), 120))
		}(i)
	}

	wg.Wait()
	close(results)

	for err := range results {
		assert.ErrorIs(t, err, ErrSlotConflict)
	}
}
