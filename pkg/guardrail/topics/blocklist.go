package topics

import (
	"context"
	"fmt"
	"strings"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/guard"
)

const ScannerName = "topic_blocklist"

// Blocklist blocks on the first configured topic found in the text.
// An empty topic list is a no-op pass.
type Blocklist struct {
	topics []string
}

func NewBlocklist(topics []string) *Blocklist {
	return &Blocklist{topics: topics}
}

func (b *Blocklist) Name() string {
	return ScannerName
}

func (b *Blocklist) Scan(_ context.Context, text string) (*guard.StageResult, error) {
	if len(b.topics) == 0 {
		return &guard.StageResult{Passed: true}, nil
	}

	textLower := strings.ToLower(text)
	for _, topic := range b.topics {
		if topic == "" {
			continue
		}
		if strings.Contains(textLower, strings.ToLower(topic)) {
			return &guard.StageResult{
				Passed: false,
				Reason: fmt.Sprintf("BLOCKED_TOPIC: %s", topic),
				Score:  1.0,
			}, nil
		}
	}

	return &guard.StageResult{Passed: true}, nil
}
