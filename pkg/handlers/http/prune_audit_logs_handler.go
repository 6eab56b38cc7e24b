package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appaudit "github.com/koppalanaveenkumar/ai-guardrails/pkg/app/audit"
)

type pruneAuditLogsHandler struct {
	logger *logrus.Logger
	query  *appaudit.Query
}

func NewPruneAuditLogsHandler(logger *logrus.Logger, query *appaudit.Query) Handler {
	return &pruneAuditLogsHandler{
		logger: logger,
		query:  query,
	}
}

func (h *pruneAuditLogsHandler) Handle(c *fiber.Ctx) error {
	days := c.QueryInt("days", appaudit.DefaultPruneDays)
	if days < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "days must not be negative"})
	}

	count, err := h.query.Prune(c.Context(), days)
	if err != nil {
		h.logger.WithError(err).Error("failed to prune audit logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to prune audit logs"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"deleted": count,
		"message": fmt.Sprintf("Deleted %d logs older than %d days.", count, days),
	})
}
