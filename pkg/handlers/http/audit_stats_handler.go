package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appaudit "github.com/koppalanaveenkumar/ai-guardrails/pkg/app/audit"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/common"
)

type auditStatsHandler struct {
	logger *logrus.Logger
	query  *appaudit.Query
}

func NewAuditStatsHandler(logger *logrus.Logger, query *appaudit.Query) Handler {
	return &auditStatsHandler{
		logger: logger,
		query:  query,
	}
}

func (h *auditStatsHandler) Handle(c *fiber.Ctx) error {
	var apiKeyID *uuid.UUID
	if id, ok := c.Locals(common.ApiKeyIdContextKey).(uuid.UUID); ok {
		apiKeyID = &id
	}

	stats, err := h.query.Stats(c.Context(), apiKeyID)
	if err != nil {
		h.logger.WithError(err).Error("failed to compute audit stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute audit stats"})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
