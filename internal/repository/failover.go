package repository

import (
	"context"
	"sync/atomic"
	"time"

	"lendit/internal/domain"
	"lendit/internal/models"

	"github.com/rs/zerolog"
)

// FailoverBookingCache serves from the primary cache until it fails,
// then switches to the fallback and probes the primary once a minute.
type FailoverBookingCache struct {
	primary   domain.BookingCache
	fallback  domain.BookingCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverBookingCache(primary, fallback domain.BookingCache, logger *zerolog.Logger) *FailoverBookingCache {
	return &FailoverBookingCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverBookingCache) Get(ctx context.Context, id int64) (*models.Booking, error) {
	if c.tryPrimary() {
		booking, err := c.primary.Get(ctx, id)
		if err == nil {
			c.markUp()
			return booking, nil
		}
		c.markDown(err)
	}
	return c.fallback.Get(ctx, id)
}

func (c *FailoverBookingCache) Set(ctx context.Context, booking *models.Booking) error {
	if c.tryPrimary() {
		if err := c.primary.Set(ctx, booking); err == nil {
			c.markUp()
			return nil
		} else {
			c.markDown(err)
		}
	}
	return c.fallback.Set(ctx, booking)
}

func (c *FailoverBookingCache) Invalidate(ctx context.Context, id int64) error {
	// Invalidate both sides so a stale entry cannot survive a
	// failover transition.
	var primaryErr error
	if c.tryPrimary() {
		if primaryErr = c.primary.Invalidate(ctx, id); primaryErr == nil {
			c.markUp()
		} else {
			c.markDown(primaryErr)
		}
	}
	return c.fallback.Invalidate(ctx, id)
}

// tryPrimary reports whether the primary should be attempted: either
// it is believed healthy, or the recovery interval has elapsed.
func (c *FailoverBookingCache) tryPrimary() bool {
	if !c.isDown.Load() {
		return true
	}
	last := time.Unix(0, c.lastCheck.Load())
	return time.Since(last) > time.Minute
}

func (c *FailoverBookingCache) markUp() {
	c.isDown.Store(false)
}

func (c *FailoverBookingCache) markDown(err error) {
	if !c.isDown.Swap(true) {
		c.logger.Error().Err(err).Msg("primary booking cache failed, falling back to memory")
	}
	c.lastCheck.Store(time.Now().UnixNano())
}
