package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/audit"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) audit.Repository {
	return &AuditLogRepository{
		db: db,
	}
}

func (r *AuditLogRepository) Insert(ctx context.Context, entry *audit.LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditLogRepository) List(ctx context.Context, limit, offset int, apiKeyID *uuid.UUID) ([]audit.LogEntry, error) {
	var entries []audit.LogEntry
	query := r.db.WithContext(ctx).Model(&audit.LogEntry{})
	if apiKeyID != nil {
		query = query.Where("api_key_id = ?", *apiKeyID)
	}
	err := query.
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *AuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&audit.LogEntry{})
	return res.RowsAffected, res.Error
}

func (r *AuditLogRepository) Aggregate(ctx context.Context, apiKeyID *uuid.UUID) (audit.Stats, error) {
	var stats audit.Stats

	query := r.db.WithContext(ctx).Model(&audit.LogEntry{})
	if apiKeyID != nil {
		query = query.Where("api_key_id = ?", *apiKeyID)
	}

	row := struct {
		Total      int64
		Blocked    int64
		AvgLatency float64
	}{}
	err := query.
		Select(
			"COUNT(*) as total, " +
				"COUNT(*) FILTER (WHERE is_safe = false) as blocked, " +
				"COALESCE(AVG(latency_ms), 0) as avg_latency",
		).
		Scan(&row).Error
	if err != nil {
		return stats, err
	}

	stats.TotalRequests = row.Total
	stats.BlockedRequests = row.Blocked
	stats.AvgLatencyMs = row.AvgLatency
	if row.Total > 0 {
		stats.BlockRate = float64(row.Blocked) / float64(row.Total) * 100
	}
	return stats, nil
}
