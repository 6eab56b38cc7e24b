package audit

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type LogEntry struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Timestamp   time.Time  `json:"timestamp" gorm:"index"`
	ModelTag    string     `json:"model_tag"`
	IsSafe      bool       `json:"is_safe"`
	Reason      *string    `json:"reason,omitempty"`
	LatencyMs   float64    `json:"latency_ms"`
	PIIDetected string     `json:"-" gorm:"column:pii_detected"`
	APIKeyID    *uuid.UUID `json:"api_key_id,omitempty" gorm:"type:uuid;index"`
}

func (LogEntry) TableName() string {
	return "public.audit_logs"
}

// PIILabels splits the stored comma-joined entity labels.
func (e LogEntry) PIILabels() []string {
	if e.PIIDetected == "" {
		return nil
	}
	return strings.Split(e.PIIDetected, ",")
}

func JoinPIILabels(labels []string) string {
	return strings.Join(labels, ",")
}
