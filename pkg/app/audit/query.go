package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/audit"
)

const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 1000
	DefaultPruneDays  = 30
)

// Query reads audit history and aggregates scoped to one API key.
type Query struct {
	repo         audit.Repository
	timeProvider func() time.Time
}

func NewQuery(repo audit.Repository) *Query {
	return &Query{
		repo:         repo,
		timeProvider: time.Now,
	}
}

func (q *Query) RecentLogs(ctx context.Context, limit, offset int, apiKeyID *uuid.UUID) ([]audit.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return q.repo.List(ctx, limit, offset, apiKeyID)
}

// Prune deletes entries older than the given number of days and returns the
// count removed. days=0 removes all historical entries.
func (q *Query) Prune(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		days = DefaultPruneDays
	}
	cutoff := q.timeProvider().AddDate(0, 0, -days)
	return q.repo.DeleteOlderThan(ctx, cutoff)
}

func (q *Query) Stats(ctx context.Context, apiKeyID *uuid.UUID) (audit.Stats, error) {
	return q.repo.Aggregate(ctx, apiKeyID)
}
