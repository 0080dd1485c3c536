package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBurst(t *testing.T) {
	limiter := NewMemoryRateLimiter(&Config{
		Limits: map[string]RateLimit{
			"scan": {RequestsPerMinute: 60, BurstSize: 3},
		},
		Enabled: true,
	})

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow("10.0.0.1", "scan")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within burst should pass", i)
	}

	allowed, retryAfter, err := limiter.Allow("10.0.0.1", "scan")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestClientsBucketIndependently(t *testing.T) {
	limiter := NewMemoryRateLimiter(&Config{
		Limits: map[string]RateLimit{
			"fines": {RequestsPerMinute: 30, BurstSize: 1},
		},
		Enabled: true,
	})

	allowed, _, err := limiter.Allow("10.0.0.1", "fines")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.Allow("10.0.0.1", "fines")
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different client still has its full burst.
	allowed, _, err = limiter.Allow("10.0.0.2", "fines")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestUnknownEndpointUsesDefaultLimit(t *testing.T) {
	limiter := NewMemoryRateLimiter(&Config{
		Limits: map[string]RateLimit{
			"default": {RequestsPerMinute: 60, BurstSize: 2},
		},
		Enabled: true,
	})

	allowed, _, err := limiter.Allow("10.0.0.1", "something-else")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, _ = limiter.Allow("10.0.0.1", "something-else")
	assert.True(t, allowed)

	allowed, _, _ = limiter.Allow("10.0.0.1", "something-else")
	assert.False(t, allowed)
}

func TestDisabledLimiterAlwaysAllows(t *testing.T) {
	limiter := NewMemoryRateLimiter(&Config{
		Limits:  map[string]RateLimit{"default": {RequestsPerMinute: 1, BurstSize: 1}},
		Enabled: false,
	})

	for i := 0; i < 10; i++ {
		allowed, _, err := limiter.Allow("10.0.0.1", "default")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestNilConfigFallsBackToDefaults(t *testing.T) {
	limiter := NewMemoryRateLimiter(nil)

	allowed, _, err := limiter.Allow("10.0.0.1", "auth_login")
	require.NoError(t, err)
	assert.True(t, allowed)
}
