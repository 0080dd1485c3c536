package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter decides whether a request from a client may proceed. The
// public token-keyed endpoints sit behind this so access tokens cannot be
// enumerated by brute force.
type RateLimiter interface {
	Allow(clientID string, endpoint string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimit defines the budget for one endpoint group.
type RateLimit struct {
	RequestsPerMinute int
	BurstSize         int
}

// Config holds per-endpoint-group limits plus a fallback.
type Config struct {
	Limits  map[string]RateLimit
	Enabled bool
}

func DefaultConfig() *Config {
	return &Config{
		Limits: map[string]RateLimit{
			"scan":       {RequestsPerMinute: 120, BurstSize: 30},
			"fines":      {RequestsPerMinute: 30, BurstSize: 10},
			"auth_login": {RequestsPerMinute: 5, BurstSize: 2},
			"default":    {RequestsPerMinute: 60, BurstSize: 15},
		},
		Enabled: true,
	}
}

type tokenBucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// MemoryRateLimiter implements RateLimiter with in-process token buckets.
type MemoryRateLimiter struct {
	config  *Config
	buckets map[string]*tokenBucket
	mu      sync.Mutex
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	return &MemoryRateLimiter{
		config:  config,
		buckets: make(map[string]*tokenBucket),
	}
}

func (r *MemoryRateLimiter) Allow(clientID string, endpoint string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	limit, ok := r.config.Limits[endpoint]
	if !ok {
		limit = r.config.Limits["default"]
	}

	key := fmt.Sprintf("%s:%s", clientID, endpoint)
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.buckets[key]
	if !ok {
		bucket = &tokenBucket{
			tokens:     float64(limit.BurstSize),
			capacity:   float64(limit.BurstSize),
			refillRate: float64(limit.RequestsPerMinute) / 60.0,
			lastRefill: now,
		}
		r.buckets[key] = bucket
	}

	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.tokens = min(bucket.capacity, bucket.tokens+elapsed*bucket.refillRate)
	bucket.lastRefill = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, 0, nil
	}

	retryAfter := time.Duration((1 - bucket.tokens) / bucket.refillRate * float64(time.Second))
	return false, retryAfter, nil
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
