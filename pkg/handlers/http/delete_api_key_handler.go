package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domain "github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/apikey"
)

type deleteAPIKeyHandler struct {
	logger *logrus.Logger
	repo   domain.Repository
}

func NewDeleteAPIKeyHandler(logger *logrus.Logger, repo domain.Repository) Handler {
	return &deleteAPIKeyHandler{
		logger: logger,
		repo:   repo,
	}
}

// Handle revokes a key. Revocation is soft: the record stays for audit
// attribution, only its active flag flips.
func (h *deleteAPIKeyHandler) Handle(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("key_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid key ID"})
	}

	if err := h.repo.Deactivate(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "API key not found"})
		}
		h.logger.WithError(err).Error("failed to deactivate api key")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to revoke API key"})
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
