package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/app/apikey"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/common"
)

const apiKeyHeader = "x-api-key"

type authMiddleware struct {
	logger    *logrus.Logger
	keyFinder apikey.Finder
}

func NewAuthMiddleware(logger *logrus.Logger, keyFinder apikey.Finder) Middleware {
	return &authMiddleware{
		logger:    logger,
		keyFinder: keyFinder,
	}
}

// Middleware validates the presented key and stores only the key record id
// downstream; the raw token never travels past this point.
func (m *authMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		presented := ctx.Get(apiKeyHeader)
		if presented == "" {
			m.logger.Debug("no api key provided")
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid or missing API Key"})
		}

		key, err := m.keyFinder.Find(ctx.Context(), presented)
		if err != nil {
			m.logger.WithField("path", ctx.Path()).Debug("rejected api key")
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid or missing API Key"})
		}

		ctx.Locals(common.ApiKeyIdContextKey, key.ID)

		return ctx.Next()
	}
}
