package audit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/audit"
)

const recordTimeout = 10 * time.Second

// Recorder appends audit entries best-effort: a write failure is logged and
// swallowed, since the guard request it belongs to has already been answered.
type Recorder interface {
	Record(entry *audit.LogEntry)
}

type recorder struct {
	repo   audit.Repository
	logger *logrus.Logger
}

func NewRecorder(repo audit.Repository, logger *logrus.Logger) Recorder {
	return &recorder{
		repo:   repo,
		logger: logger,
	}
}

func (r *recorder) Record(entry *audit.LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.repo.Insert(ctx, entry); err != nil {
		r.logger.WithError(err).Error("failed to write audit log")
	}
}
