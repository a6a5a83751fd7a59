package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryBookingCache(time.Minute)
	ctx := context.Background()

	got, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	booking := sampleBooking()
	require.NoError(t, cache.Set(ctx, booking))

	got, err = cache.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, booking.ID, got.ID)

	// The cached copy is detached from the caller's value.
	booking.BookerID = 99
	got, err = cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.BookerID)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryBookingCache(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleBooking()))
	time.Sleep(20 * time.Millisecond)

	got, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCacheInvalidate(t *testing.T) {
	cache := NewMemoryBookingCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleBooking()))
	require.NoError(t, cache.Invalidate(ctx, 7))

	got, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}
