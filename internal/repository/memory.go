package repository

import (
	"context"
	"sync"
	"time"

	"tutomatics/internal/models"
)

type memoryEntry struct {
	windows   []models.Availability
	expiresAt time.Time
}

type MemoryAvailabilityCache struct {
	entries sync.Map
	ttl     time.Duration
}

func NewMemoryAvailabilityCache(ttl time.Duration) *MemoryAvailabilityCache {
	return &MemoryAvailabilityCache{
		ttl: ttl,
	}
}

func (c *MemoryAvailabilityCache) Get(ctx context.Context, tutorID int64) ([]models.Availability, bool, error) {
	val, ok := c.entries.Load(tutorID)
	if !ok {
		return nil, false, nil
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(tutorID)
		return nil, false, nil
	}
	return entry.windows, true, nil
}

func (c *MemoryAvailabilityCache) Set(ctx context.Context, tutorID int64, windows []models.Availability) error {
	c.entries.Store(tutorID, &memoryEntry{
		windows:   windows,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

func (c *MemoryAvailabilityCache) Invalidate(ctx context.Context, tutorID int64) error {
	c.entries.Delete(tutorID)
	return nil
}
