package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appaudit "github.com/koppalanaveenkumar/ai-guardrails/pkg/app/audit"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/common"
)

type listAuditLogsHandler struct {
	logger *logrus.Logger
	query  *appaudit.Query
}

func NewListAuditLogsHandler(logger *logrus.Logger, query *appaudit.Query) Handler {
	return &listAuditLogsHandler{
		logger: logger,
		query:  query,
	}
}

// Handle returns recent audit entries scoped to the caller's key, most
// recent first. Entries are written asynchronously, so a reader polling
// right after a guard request may not see its entry yet.
func (h *listAuditLogsHandler) Handle(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", appaudit.DefaultQueryLimit)
	offset := c.QueryInt("offset", 0)

	var apiKeyID *uuid.UUID
	if id, ok := c.Locals(common.ApiKeyIdContextKey).(uuid.UUID); ok {
		apiKeyID = &id
	}

	entries, err := h.query.RecentLogs(c.Context(), limit, offset, apiKeyID)
	if err != nil {
		h.logger.WithError(err).Error("failed to read audit logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read audit logs"})
	}

	type logResponse struct {
		ID        int64    `json:"id"`
		Timestamp string   `json:"timestamp"`
		ModelTag  string   `json:"model_tag"`
		IsSafe    bool     `json:"is_safe"`
		Reason    *string  `json:"reason,omitempty"`
		LatencyMs float64  `json:"latency_ms"`
		PII       []string `json:"pii_detected"`
	}

	out := make([]logResponse, 0, len(entries))
	for _, e := range entries {
		pii := e.PIILabels()
		if pii == nil {
			pii = []string{}
		}
		out = append(out, logResponse{
			ID:        e.ID,
			Timestamp: e.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
			ModelTag:  e.ModelTag,
			IsSafe:    e.IsSafe,
			Reason:    e.Reason,
			LatencyMs: e.LatencyMs,
			PII:       pii,
		})
	}

	return c.Status(fiber.StatusOK).JSON(out)
}
