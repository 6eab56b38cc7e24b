package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// memoryLimiter is the fallback when redis is not configured. The mutex makes
// check-and-increment atomic across concurrent requests from the same key.
type memoryLimiter struct {
	limit        int
	window       time.Duration
	timeProvider func() time.Time

	mu      sync.Mutex
	windows map[string][]time.Time
}

func NewMemoryLimiter(limit int, window time.Duration, timeProvider func() time.Time) Limiter {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &memoryLimiter{
		limit:        limit,
		window:       window,
		timeProvider: timeProvider,
		windows:      make(map[string][]time.Time),
	}
}

func (m *memoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.timeProvider()
	windowStart := now.Add(-m.window)

	kept := m.windows[key][:0]
	for _, ts := range m.windows[key] {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= m.limit {
		m.windows[key] = kept
		retryAfter := kept[0].Add(m.window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: retryAfter,
		}, nil
	}

	m.windows[key] = append(kept, now)
	return Decision{
		Allowed:   true,
		Remaining: m.limit - len(m.windows[key]),
	}, nil
}
