package guardrail

import (
	"context"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/guard"
)

// Scanner is the capability contract shared by all detector stages.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, text string) (*guard.StageResult, error)
}
