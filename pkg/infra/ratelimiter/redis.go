package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// slidingWindowScript prunes, counts and conditionally records the request
// as one atomic operation, so concurrent check-and-increment cannot race.
// KEYS[1] window zset
// ARGV[1] window start (unix micros), ARGV[2] now (unix micros),
// ARGV[3] ceiling, ARGV[4] member, ARGV[5] window TTL seconds
// Returns {allowed(0|1), count, oldest score}.
var slidingWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  return {0, count, oldest[2]}
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
redis.call('EXPIRE', KEYS[1], ARGV[5])
return {1, count + 1, '0'}
`)

type redisLimiter struct {
	client       *redis.Client
	limit        int
	window       time.Duration
	timeProvider func() time.Time
	uuidProvider func() uuid.UUID
}

type RedisLimiterOpts struct {
	TimeProvider func() time.Time
	UuidProvider func() uuid.UUID
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, opts *RedisLimiterOpts) Limiter {
	timeProvider := time.Now
	uuidProvider := uuid.New
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	if opts != nil && opts.UuidProvider != nil {
		uuidProvider = opts.UuidProvider
	}
	return &redisLimiter{
		client:       client,
		limit:        limit,
		window:       window,
		timeProvider: timeProvider,
		uuidProvider: uuidProvider,
	}
}

func (r *redisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := r.timeProvider()
	windowStart := now.Add(-r.window)
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	member := fmt.Sprintf("%d:%s", now.UnixMicro(), r.uuidProvider().String())

	res, err := slidingWindowScript.Run(ctx, r.client,
		[]string{redisKey},
		windowStart.UnixMicro(),
		now.UnixMicro(),
		r.limit,
		member,
		int(r.window.Seconds())+1,
	).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) < 3 {
		return Decision{}, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}

	allowed, _ := vals[0].(int64)
	count, _ := vals[1].(int64)

	if allowed == 1 {
		return Decision{
			Allowed:   true,
			Remaining: r.limit - int(count),
		}, nil
	}

	retryAfter := r.window
	if oldestStr, ok := vals[2].(string); ok {
		var oldestMicros int64
		if _, err := fmt.Sscanf(oldestStr, "%d", &oldestMicros); err == nil && oldestMicros > 0 {
			oldest := time.UnixMicro(oldestMicros)
			retryAfter = oldest.Add(r.window).Sub(now)
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
	}

	return Decision{
		Allowed:    false,
		Remaining:  0,
		RetryAfter: retryAfter,
	}, nil
}
