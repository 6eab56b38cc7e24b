package middleware_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/common"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/ratelimiter"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/middleware"
)

type mockLimiter struct {
	decision ratelimiter.Decision
	err      error
	lastKey  string
}

func (m *mockLimiter) Allow(_ context.Context, key string) (ratelimiter.Decision, error) {
	m.lastKey = key
	return m.decision, m.err
}

func newRateLimitApp(limiter ratelimiter.Limiter, keyID *uuid.UUID) *fiber.App {
	app := fiber.New()
	if keyID != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(common.ApiKeyIdContextKey, *keyID)
			return c.Next()
		})
	}
	app.Use(middleware.NewRateLimitMiddleware(logrus.New(), limiter).Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestRateLimitMiddleware_Admitted(t *testing.T) {
	limiter := &mockLimiter{decision: ratelimiter.Decision{Allowed: true, Remaining: 4}}
	app := newRateLimitApp(limiter, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimitMiddleware_Rejected(t *testing.T) {
	limiter := &mockLimiter{decision: ratelimiter.Decision{
		Allowed:    false,
		RetryAfter: 42 * time.Second,
	}}
	app := newRateLimitApp(limiter, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "42", resp.Header.Get("Retry-After"))
}

func TestRateLimitMiddleware_RetryAfterNeverBelowOneSecond(t *testing.T) {
	limiter := &mockLimiter{decision: ratelimiter.Decision{
		Allowed:    false,
		RetryAfter: 10 * time.Millisecond,
	}}
	app := newRateLimitApp(limiter, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
}

func TestRateLimitMiddleware_KeyedByAPIKeyID(t *testing.T) {
	keyID := uuid.New()
	limiter := &mockLimiter{decision: ratelimiter.Decision{Allowed: true}}
	app := newRateLimitApp(limiter, &keyID)

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))

	require.NoError(t, err)
	assert.Equal(t, keyID.String(), limiter.lastKey)
}

func TestRateLimitMiddleware_FallsBackToClientIP(t *testing.T) {
	limiter := &mockLimiter{decision: ratelimiter.Decision{Allowed: true}}
	app := newRateLimitApp(limiter, nil)

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))

	require.NoError(t, err)
	assert.NotEmpty(t, limiter.lastKey)
}

func TestRateLimitMiddleware_FailsOpenOnLimiterError(t *testing.T) {
	limiter := &mockLimiter{err: errors.New("redis unreachable")}
	app := newRateLimitApp(limiter, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
