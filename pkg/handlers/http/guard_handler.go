package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/common"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/guard"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/guardrail"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/prometheus"
)

type guardHandler struct {
	logger   *logrus.Logger
	pipeline *guardrail.Pipeline
}

func NewGuardHandler(logger *logrus.Logger, pipeline *guardrail.Pipeline) Handler {
	return &guardHandler{
		logger:   logger,
		pipeline: pipeline,
	}
}

// Handle runs the guardrail pipeline against the submitted prompt. Blocking
// is a normal application-level outcome: both safe and blocked verdicts are
// 200 responses and clients must branch on the body.
func (h *guardHandler) Handle(c *fiber.Ctx) error {
	var req guard.Request
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse guard request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "prompt must not be empty"})
	}

	var apiKeyID *uuid.UUID
	if id, ok := c.Locals(common.ApiKeyIdContextKey).(uuid.UUID); ok {
		apiKeyID = &id
	}

	result := h.pipeline.Evaluate(c.Context(), apiKeyID, &req)
	if !result.Safe {
		prometheus.GuardBlockedTotal.Inc()
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
