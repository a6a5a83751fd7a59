package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lendit/internal/config"
	"lendit/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisBookingCache caches bookings by id as JSON with a TTL.
type RedisBookingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisBookingCache(client *redis.Client, ttl time.Duration) *RedisBookingCache {
	return &RedisBookingCache{client: client, ttl: ttl}
}

func bookingKey(id int64) string {
	return fmt.Sprintf("booking:%d", id)
}

func (r *RedisBookingCache) Get(ctx context.Context, id int64) (*models.Booking, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, bookingKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get booking from redis: %w", err)
	}

	var booking models.Booking
	if err := json.Unmarshal([]byte(val), &booking); err != nil {
		return nil, fmt.Errorf("unmarshal cached booking: %w", err)
	}
	return &booking, nil
}

func (r *RedisBookingCache) Set(ctx context.Context, booking *models.Booking) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	if err := r.client.Set(ctx, bookingKey(booking.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set booking in redis: %w", err)
	}
	return nil
}

func (r *RedisBookingCache) Invalidate(ctx context.Context, id int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, bookingKey(id)).Err(); err != nil {
		return fmt.Errorf("delete booking from redis: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
