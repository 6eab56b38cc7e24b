package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds; detector calls dominate the tail.
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	GuardRequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardrails_requests_total",
			Help: "Total number of guard requests processed",
		},
		[]string{"method", "status"},
	)

	GuardBlockedTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "guardrails_blocked_total",
			Help: "Total number of prompts blocked by the pipeline",
		},
	)

	GuardRequestLatency = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guardrails_latency_ms",
			Help:    "Request latency in milliseconds",
			Buckets: latencyBuckets,
		},
	)
)

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
