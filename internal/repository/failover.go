package repository

import (
	"context"
	"sync/atomic"
	"time"

	"tutomatics/internal/domain"
	"tutomatics/internal/models"

	"github.com/rs/zerolog"
)

type FailoverAvailabilityCache struct {
	primary   domain.AvailabilityCache
	fallback  domain.AvailabilityCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverAvailabilityCache(primary, fallback domain.AvailabilityCache, logger *zerolog.Logger) *FailoverAvailabilityCache {
	return &FailoverAvailabilityCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverAvailabilityCache) Get(ctx context.Context, tutorID int64) ([]models.Availability, bool, error) {
	if !c.isDown.Load() {
		windows, ok, err := c.primary.Get(ctx, tutorID)
		if err == nil {
			return windows, ok, nil
		}
		c.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
		c.isDown.Store(true)
		c.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if c.isDown.Load() && time.Since(c.lastCheck) > time.Minute {
		windows, ok, err := c.primary.Get(ctx, tutorID)
		if err == nil {
			c.isDown.Store(false)
			return windows, ok, nil
		}
		c.lastCheck = time.Now()
	}

	return c.fallback.Get(ctx, tutorID)
}

func (c *FailoverAvailabilityCache) Set(ctx context.Context, tutorID int64, windows []models.Availability) error {
	if !c.isDown.Load() {
		err := c.primary.Set(ctx, tutorID, windows)
		if err == nil {
			return nil
		}
		c.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
		c.isDown.Store(true)
		c.lastCheck = time.Now()
	}

	return c.fallback.Set(ctx, tutorID, windows)
}

func (c *FailoverAvailabilityCache) Invalidate(ctx context.Context, tutorID int64) error {
	if !c.isDown.Load() {
		err := c.primary.Invalidate(ctx, tutorID)
		if err == nil {
			// Keep both sides coherent so a later failover does not
			// serve windows that were invalidated on the primary.
			return c.fallback.Invalidate(ctx, tutorID)
		}
		c.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
		c.isDown.Store(true)
		c.lastCheck = time.Now()
	}

	return c.fallback.Invalidate(ctx, tutorID)
}
