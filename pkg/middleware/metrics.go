package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/prometheus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		prometheus.GuardRequestTotal.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()
		prometheus.GuardRequestLatency.Observe(float64(time.Since(start).Microseconds()) / 1000.0)

		return err
	}
}
