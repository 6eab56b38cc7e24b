package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appkey "github.com/koppalanaveenkumar/ai-guardrails/pkg/app/apikey"
)

type createAPIKeyRequest struct {
	Name string `json:"name"`
}

type createAPIKeyHandler struct {
	logger  *logrus.Logger
	creator appkey.Creator
}

func NewCreateAPIKeyHandler(logger *logrus.Logger, creator appkey.Creator) Handler {
	return &createAPIKeyHandler{
		logger:  logger,
		creator: creator,
	}
}

// Handle issues a new key. The raw token is returned exactly once, in this
// response.
func (h *createAPIKeyHandler) Handle(c *fiber.Ctx) error {
	var req createAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse api key request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if req.Name == "" {
		req.Name = "Default Key"
	}

	key, err := h.creator.Create(c.Context(), req.Name)
	if err != nil {
		h.logger.WithError(err).Error("failed to create api key")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create API key"})
	}

	return c.Status(fiber.StatusCreated).JSON(key)
}
