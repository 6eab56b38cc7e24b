package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Stats struct {
	TotalRequests   int64   `json:"total_requests"`
	BlockedRequests int64   `json:"blocked_requests"`
	BlockRate       float64 `json:"block_rate"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
}

type Repository interface {
	Insert(ctx context.Context, entry *LogEntry) error
	// List returns entries most recent first, optionally scoped to one API key.
	List(ctx context.Context, limit, offset int, apiKeyID *uuid.UUID) ([]LogEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Aggregate(ctx context.Context, apiKeyID *uuid.UUID) (Stats, error)
}
