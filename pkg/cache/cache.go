package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"enforcement-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "enforce:vehicle:"

// VehicleCache caches vehicle records for the admin read paths. A miss is
// (nil, nil), not an error. The fine issuance path never reads through the
// cache so a freshly assigned access token is never served stale.
type VehicleCache interface {
	GetVehicle(ctx context.Context, key string) (*models.Vehicle, error)
	SetVehicle(ctx context.Context, key string, vehicle *models.Vehicle, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// RedisConfig holds connection settings for the Redis-backed cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RedisVehicleCache struct {
	client *redis.Client
}

func NewRedisVehicleCache(cfg RedisConfig) *RedisVehicleCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisVehicleCache{client: client}
}

// NewRedisVehicleCacheFromClient wraps an existing client; used by tests.
func NewRedisVehicleCacheFromClient(client *redis.Client) *RedisVehicleCache {
	return &RedisVehicleCache{client: client}
}

func (c *RedisVehicleCache) GetVehicle(ctx context.Context, key string) (*models.Vehicle, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var vehicle models.Vehicle
	if err := json.Unmarshal(data, &vehicle); err != nil {
		return nil, fmt.Errorf("failed to decode cached vehicle: %w", err)
	}

	return &vehicle, nil
}

func (c *RedisVehicleCache) SetVehicle(ctx context.Context, key string, vehicle *models.Vehicle, ttl time.Duration) error {
	data, err := json.Marshal(vehicle)
	if err != nil {
		return fmt.Errorf("failed to encode vehicle: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}

	return nil
}

func (c *RedisVehicleCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = keyPrefix + key
	}

	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}

	return nil
}

func (c *RedisVehicleCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisVehicleCache) Close() error {
	return c.client.Close()
}
