package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_AllowsUpToLimit(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(5, time.Minute, func() time.Time { return now })

	for i := 0; i < 5; i++ {
		decision, err := limiter.Allow(context.Background(), "key-1")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, 4-i, decision.Remaining)
	}

	decision, err := limiter.Allow(context.Background(), "key-1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
}

func TestMemoryLimiter_RejectionConsumesNoSlot(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	limiter := NewMemoryLimiter(1, time.Minute, clock)

	decision, err := limiter.Allow(context.Background(), "key-1")
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	// Hammer the limiter while over the cap; none of these may extend
	// the window.
	for i := 0; i < 10; i++ {
		decision, err = limiter.Allow(context.Background(), "key-1")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
	}

	// Once the single admitted request leaves the window, the next
	// attempt is admitted again.
	now = now.Add(time.Minute + time.Second)
	decision, err = limiter.Allow(context.Background(), "key-1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(2, time.Minute, func() time.Time { return now })

	for i := 0; i < 2; i++ {
		decision, err := limiter.Allow(context.Background(), "key-1")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
		now = now.Add(20 * time.Second)
	}

	// t=40s: both entries (t=0, t=20s) still inside the window.
	decision, err := limiter.Allow(context.Background(), "key-1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	// t=70s: the t=0 entry has aged out.
	now = now.Add(30 * time.Second)
	decision, err = limiter.Allow(context.Background(), "key-1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestMemoryLimiter_RetryAfterPointsAtOldestEntry(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(1, time.Minute, func() time.Time { return now })

	_, err := limiter.Allow(context.Background(), "key-1")
	require.NoError(t, err)

	now = now.Add(15 * time.Second)
	decision, err := limiter.Allow(context.Background(), "key-1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 45*time.Second, decision.RetryAfter)
}

func TestMemoryLimiter_KeysAreIsolated(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(1, time.Minute, func() time.Time { return now })

	decision, err := limiter.Allow(context.Background(), "key-1")
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = limiter.Allow(context.Background(), "key-2")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}
