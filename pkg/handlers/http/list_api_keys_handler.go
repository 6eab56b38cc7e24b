package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	domain "github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/apikey"
)

type listAPIKeysHandler struct {
	logger *logrus.Logger
	repo   domain.Repository
}

func NewListAPIKeysHandler(logger *logrus.Logger, repo domain.Repository) Handler {
	return &listAPIKeysHandler{
		logger: logger,
		repo:   repo,
	}
}

func (h *listAPIKeysHandler) Handle(c *fiber.Ctx) error {
	keys, err := h.repo.List(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list api keys")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list API keys"})
	}

	// Don't expose raw tokens after issuance.
	for i := range keys {
		keys[i].Key = ""
	}

	return c.Status(fiber.StatusOK).JSON(keys)
}
