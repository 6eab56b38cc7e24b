package middleware

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/common"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/ratelimiter"
)

type rateLimitMiddleware struct {
	logger  *logrus.Logger
	limiter ratelimiter.Limiter
}

func NewRateLimitMiddleware(logger *logrus.Logger, limiter ratelimiter.Limiter) Middleware {
	return &rateLimitMiddleware{
		logger:  logger,
		limiter: limiter,
	}
}

// Middleware enforces the per-key admission ceiling. Runs after auth, so the
// key id is in locals; unauthenticated paths fall back to the caller address.
func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		limitKey := ctx.IP()
		if keyID, ok := ctx.Locals(common.ApiKeyIdContextKey).(uuid.UUID); ok {
			limitKey = keyID.String()
		}

		decision, err := m.limiter.Allow(ctx.Context(), limitKey)
		if err != nil {
			// Limiter outage fails open: rejecting traffic on a counter
			// backend failure is worse than briefly not counting it.
			m.logger.WithError(err).Warn("rate limiter unavailable, admitting request")
			return ctx.Next()
		}

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			ctx.Set("Retry-After", strconv.Itoa(retryAfter))
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
		}

		return ctx.Next()
	}
}
