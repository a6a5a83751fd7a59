package repository

import (
	"context"
	"sync"
	"time"

	"lendit/internal/models"
)

// MemoryBookingCache is an in-process fallback cache with the same
// contract as the Redis one.
type MemoryBookingCache struct {
	entries sync.Map
	ttl     time.Duration
}

type cacheEntry struct {
	booking   models.Booking
	expiresAt time.Time
}

func NewMemoryBookingCache(ttl time.Duration) *MemoryBookingCache {
	return &MemoryBookingCache{ttl: ttl}
}

func (c *MemoryBookingCache) Get(ctx context.Context, id int64) (*models.Booking, error) {
	val, ok := c.entries.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(id)
		return nil, nil
	}
	booking := entry.booking
	return &booking, nil
}

func (c *MemoryBookingCache) Set(ctx context.Context, booking *models.Booking) error {
	c.entries.Store(booking.ID, cacheEntry{
		booking:   *booking,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

func (c *MemoryBookingCache) Invalidate(ctx context.Context, id int64) error {
	c.entries.Delete(id)
	return nil
}
