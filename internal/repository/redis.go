package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tutomatics/internal/config"
	"tutomatics/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	client := redis.NewClient(options)

	return client
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, tutorID int64) ([]models.Availability, bool, error) {
	if c.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("tutor_availability:%d", tutorID)
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get availability from redis: %w", err)
	}

	var windows []models.Availability
	if err := json.Unmarshal([]byte(val), &windows); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal availability: %w", err)
	}

	return windows, true, nil
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, tutorID int64, windows []models.Availability) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("tutor_availability:%d", tutorID)
	data, err := json.Marshal(windows)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set availability in redis: %w", err)
	}

	return nil
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, tutorID int64) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("tutor_availability:%d", tutorID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete availability from redis: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
