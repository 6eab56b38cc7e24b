package server

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/config"
	handlers "github.com/koppalanaveenkumar/ai-guardrails/pkg/handlers/http"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/middleware"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/server/router"
)

type (
	GatewayServerDI struct {
		Config              *config.Config
		Logger              *logrus.Logger
		MiddlewareTransport *middleware.Transport
		HandlerTransport    handlers.HandlerTransport
	}
	GatewayServer struct {
		*BaseServer
		middlewareTransport *middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

func NewGatewayServer(di GatewayServerDI) *GatewayServer {
	s := &GatewayServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}
	s.BaseServer.setupMetricsEndpoint()
	return s
}

func (s *GatewayServer) Run() error {
	s.setupHealthCheck()
	s.WithRouters(router.NewGatewayRouter(s.middlewareTransport, s.handlerTransport))

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("Starting guardrails gateway")
	return s.Router.Listen(addr)
}

func (s *GatewayServer) Shutdown() error {
	return s.Router.Shutdown()
}
