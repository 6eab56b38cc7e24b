package http

import "github.com/gofiber/fiber/v2"

const ErrInvalidJsonPayload = "invalid JSON payload"

type Handler interface {
	Handle(c *fiber.Ctx) error
}

type HandlerTransport struct {
	GuardHandler Handler

	ListAuditLogsHandler  Handler
	PruneAuditLogsHandler Handler
	AuditStatsHandler     Handler

	CreateAPIKeyHandler Handler
	ListAPIKeysHandler  Handler
	DeleteAPIKeyHandler Handler
}
