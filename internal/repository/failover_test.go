package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutomatics/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, tutorID int64) ([]models.Availability, bool, error) {
	args := m.Called(ctx, tutorID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.Availability), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, tutorID int64, windows []models.Availability) error {
	args := m.Called(ctx, tutorID, windows)
	return args.Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, tutorID int64) error {
	args := m.Called(ctx, tutorID)
	return args.Error(0)
}

func TestFailoverAvailabilityCache(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)

		windows := testWindows()
		primary.On("Get", ctx, int64(1)).Return(windows, true, nil).Once()

		got, ok, err := cache.Get(ctx, 1)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, windows, got)
		primary.AssertExpectations(t)
		fallback.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)

		windows := testWindows()
		primary.On("Get", ctx, int64(2)).Return(nil, false, errors.New("redis down")).Once()
		fallback.On("Get", ctx, int64(2)).Return(windows, true, nil).Once()

		got, ok, err := cache.Get(ctx, 2)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, windows, got)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("WhileDownUsesFallback", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)
		cache.isDown.Store(true)
		cache.lastCheck = time.Now()

		fallback.On("Get", ctx, int64(3)).Return(nil, false, nil).Once()

		_, ok, err := cache.Get(ctx, 3)
		assert.NoError(t, err)
		assert.False(t, ok)
		fallback.AssertExpectations(t)
		primary.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("RecoveryAfterOneMinute", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)
		cache.isDown.Store(true)
		cache.lastCheck = time.Now().Add(-2 * time.Minute)

		windows := testWindows()
		primary.On("Get", ctx, int64(4)).Return(windows, true, nil).Once()

		got, ok, err := cache.Get(ctx, 4)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, windows, got)
		assert.False(t, cache.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("SetFailoverToFallback", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)

		windows := testWindows()
		primary.On("Set", ctx, int64(5), windows).Return(errors.New("redis down")).Once()
		fallback.On("Set", ctx, int64(5), windows).Return(nil).Once()

		assert.NoError(t, cache.Set(ctx, 5, windows))
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("InvalidateHitsBothSides", func(t *testing.T) {
		primary := new(mockCache)
		fallback := new(mockCache)
		cache := NewFailoverAvailabilityCache(primary, fallback, &logger)

		primary.On("Invalidate", ctx, int64(6)).Return(nil).Once()
		fallback.On("Invalidate", ctx, int64(6)).Return(nil).Once()

		assert.NoError(t, cache.Invalidate(ctx, 6))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}
