package ratelimiter

import (
	"context"
	"time"
)

// Decision is the outcome of one admission check. RetryAfter is the time
// until the window resets; it is only meaningful when Allowed is false.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter caps request volume per identity over a sliding window. A rejected
// attempt must not consume an admission slot.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
