package guardrail

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appaudit "github.com/koppalanaveenkumar/ai-guardrails/pkg/app/audit"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/app/events"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/audit"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/guard"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/guardrail/pii"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/guardrail/topics"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/webhook"
)

// Pipeline sequences the detector stages with early-exit-on-block semantics:
// PII -> Injection -> Toxicity -> TopicBlocklist. PII runs first so that
// every later stage scans the redacted text and a blocked reason can never
// leak raw PII. Audit append and the block alert are scheduled as detached
// background work after the verdict is produced.
type Pipeline struct {
	redactor   *pii.Redactor
	injection  Scanner
	toxicity   Scanner
	dispatcher events.Dispatcher
	recorder   appaudit.Recorder
	notifier   webhook.Notifier
	logger     *logrus.Logger

	modelTag     string
	stageTimeout time.Duration
	timeProvider func() time.Time
}

type PipelineOpts struct {
	ModelTag     string
	StageTimeout time.Duration
	TimeProvider func() time.Time
}

func NewPipeline(
	redactor *pii.Redactor,
	injection Scanner,
	toxicity Scanner,
	dispatcher events.Dispatcher,
	recorder appaudit.Recorder,
	notifier webhook.Notifier,
	logger *logrus.Logger,
	opts PipelineOpts,
) *Pipeline {
	timeProvider := opts.TimeProvider
	if timeProvider == nil {
		timeProvider = time.Now
	}
	stageTimeout := opts.StageTimeout
	if stageTimeout == 0 {
		stageTimeout = 10 * time.Second
	}
	modelTag := opts.ModelTag
	if modelTag == "" {
		modelTag = "guard-v2-composite"
	}
	return &Pipeline{
		redactor:     redactor,
		injection:    injection,
		toxicity:     toxicity,
		dispatcher:   dispatcher,
		recorder:     recorder,
		notifier:     notifier,
		logger:       logger,
		modelTag:     modelTag,
		stageTimeout: stageTimeout,
		timeProvider: timeProvider,
	}
}

// Evaluate runs the enabled stages against the prompt and returns the
// verdict. The result is finalized before the audit entry and any alert are
// guaranteed to be written.
func (p *Pipeline) Evaluate(ctx context.Context, apiKeyID *uuid.UUID, req *guard.Request) *guard.Result {
	start := p.timeProvider()

	cfg := req.Config
	if cfg == nil {
		cfg = guard.DefaultConfig()
	}

	sanitized := req.Prompt
	piiLabels := []string{}

	if cfg.RedactPII {
		res := p.runStage(ctx, p.redactor, sanitized)
		if res.MutatedText != nil {
			sanitized = *res.MutatedText
		}
		piiLabels = append(piiLabels, res.Labels...)
	}

	if cfg.DetectInjection {
		res := p.runStage(ctx, p.injection, sanitized)
		if !res.Passed {
			return p.finish(start, apiKeyID, sanitized, piiLabels, res)
		}
	}

	if cfg.DetectToxicity {
		res := p.runStage(ctx, p.toxicity, sanitized)
		if !res.Passed {
			return p.finish(start, apiKeyID, sanitized, piiLabels, res)
		}
	}

	if len(cfg.BlockTopics) > 0 {
		res := p.runStage(ctx, topics.NewBlocklist(cfg.BlockTopics), sanitized)
		if !res.Passed {
			return p.finish(start, apiKeyID, sanitized, piiLabels, res)
		}
	}

	return p.finish(start, apiKeyID, sanitized, piiLabels, &guard.StageResult{Passed: true})
}

// runStage executes one scanner under the per-stage timeout. A scanner error
// degrades to a pass with a warning; per-stage fail-open/fail-closed policy
// lives inside the scanners themselves.
func (p *Pipeline) runStage(ctx context.Context, scanner Scanner, text string) *guard.StageResult {
	stageCtx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	res, err := scanner.Scan(stageCtx, text)
	if err != nil {
		p.logger.WithError(err).WithField("stage", scanner.Name()).Warn("stage failed, treating as pass")
		return &guard.StageResult{Passed: true}
	}
	return res
}

func (p *Pipeline) finish(
	start time.Time,
	apiKeyID *uuid.UUID,
	sanitized string,
	piiLabels []string,
	res *guard.StageResult,
) *guard.Result {
	latency := float64(p.timeProvider().Sub(start).Microseconds()) / 1000.0

	result := &guard.Result{
		Safe:            res.Passed,
		Score:           res.Score,
		SanitizedPrompt: sanitized,
		PIIDetected:     piiLabels,
	}

	var reason *string
	if !res.Passed {
		// Score appended for visibility in existing log tooling.
		r := res.Reason
		if res.Score > 0 {
			r = fmt.Sprintf("%s (Conf: %.2f)", res.Reason, res.Score)
		}
		reason = &r
		result.Reason = &r
	}

	entry := &audit.LogEntry{
		Timestamp:   p.timeProvider(),
		ModelTag:    p.modelTag,
		IsSafe:      res.Passed,
		Reason:      reason,
		LatencyMs:   latency,
		PIIDetected: audit.JoinPIILabels(piiLabels),
		APIKeyID:    apiKeyID,
	}
	p.dispatcher.Dispatch(func() {
		p.recorder.Record(entry)
	})

	if !res.Passed {
		alertReason := *reason
		score := res.Score
		details := ""
		if len(piiLabels) > 0 {
			details = fmt.Sprintf("PII: %v", piiLabels)
		}
		p.dispatcher.Dispatch(func() {
			p.notifier.SendAlert(alertReason, score, details)
		})
	}

	return result
}
