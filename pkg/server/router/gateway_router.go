package router

import (
	"github.com/gofiber/fiber/v2"

	handlers "github.com/koppalanaveenkumar/ai-guardrails/pkg/handlers/http"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/middleware"
)

type gatewayRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewGatewayRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &gatewayRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *gatewayRouter) BuildRoutes(router *fiber.App) error {
	v1 := router.Group("/api/v1")
	{
		v1.Post("/guard",
			r.middlewareTransport.MetricsMiddleware.Middleware(),
			r.middlewareTransport.AuthMiddleware.Middleware(),
			r.middlewareTransport.RateLimitMiddleware.Middleware(),
			r.handlerTransport.GuardHandler.Handle,
		)

		// Audit queries are scoped to the calling key, so they share the
		// auth middleware but skip rate limiting.
		audit := v1.Group("/audit", r.middlewareTransport.AuthMiddleware.Middleware())
		{
			audit.Get("/logs", r.handlerTransport.ListAuditLogsHandler.Handle)
			audit.Get("/stats", r.handlerTransport.AuditStatsHandler.Handle)
			audit.Delete("/prune", r.handlerTransport.PruneAuditLogsHandler.Handle)
		}

		// Key management
		keys := v1.Group("/keys")
		{
			keys.Post("", r.handlerTransport.CreateAPIKeyHandler.Handle)
			keys.Get("", r.handlerTransport.ListAPIKeysHandler.Handle)
			keys.Delete("/:key_id", r.handlerTransport.DeleteAPIKeyHandler.Handle)
		}
	}
	return nil
}
