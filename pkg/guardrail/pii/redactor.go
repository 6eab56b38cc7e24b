package pii

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/guard"
)

const ScannerName = "pii_redactor"

type Entity string

const (
	Email       Entity = "email"
	PhoneNumber Entity = "phone_number"
	CreditCard  Entity = "credit_card"
	SSN         Entity = "ssn"
	IPAddress   Entity = "ip_address"
	IBAN        Entity = "iban"
	Password    Entity = "password"
	APIKey      Entity = "api_key"
	AccessToken Entity = "access_token"
)

var entityPatterns = map[Entity]*regexp.Regexp{
	Email:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	PhoneNumber: regexp.MustCompile(`\b(?:\+?\d{1,3}[-. ]?)?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`),
	CreditCard:  regexp.MustCompile(`\b(?:\d[ -]?){13,19}\b`),
	SSN:         regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	IPAddress:   regexp.MustCompile(`\b((25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`),
	IBAN:        regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{10,30}\b`),
	Password:    regexp.MustCompile(`(?i)password\s*[=:]\s*\S+`),
	APIKey:      regexp.MustCompile(`(?i)(api[_-]?key|access[_-]?key)\s*[=:]\s*\S+`),
	AccessToken: regexp.MustCompile(`(?i)(access[_-]?token|bearer)\s*[=:]\s*\S+`),
}

// entityOrder controls precedence when spans overlap: the earlier entity wins.
// IBAN and phone numbers go before credit cards so digit runs are not
// swallowed by the broader card pattern.
var entityOrder = []Entity{
	IBAN,
	SSN,
	PhoneNumber,
	CreditCard,
	Email,
	IPAddress,
	Password,
	APIKey,
	AccessToken,
}

type span struct {
	start  int
	end    int
	entity Entity
}

// Redactor detects PII spans and replaces each with a placeholder carrying
// the entity label. It never fails the request.
type Redactor struct {
	logger *logrus.Logger
}

func NewRedactor(logger *logrus.Logger) *Redactor {
	return &Redactor{logger: logger}
}

func (r *Redactor) Name() string {
	return ScannerName
}

func (r *Redactor) Scan(_ context.Context, text string) (*guard.StageResult, error) {
	sanitized, labels := r.Redact(text)
	if len(labels) > 0 {
		r.logger.WithField("entities", labels).Debug("pii entities redacted")
	}
	return &guard.StageResult{
		Passed:      true,
		MutatedText: &sanitized,
		Labels:      labels,
	}, nil
}

// Redact rewrites all detected spans in a single offset-stable pass and
// returns the sanitized text plus the distinct entity labels found.
func (r *Redactor) Redact(text string) (string, []string) {
	if text == "" {
		return text, nil
	}

	var spans []span
	for _, entity := range entityOrder {
		pattern := entityPatterns[entity]
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			spans = append(spans, span{start: loc[0], end: loc[1], entity: entity})
		}
	}
	if len(spans) == 0 {
		return text, nil
	}

	spans = resolveOverlaps(spans)

	var out []byte
	labels := make([]string, 0, len(spans))
	seen := make(map[Entity]bool)
	prev := 0
	for _, s := range spans {
		out = append(out, text[prev:s.start]...)
		out = append(out, placeholder(s.entity)...)
		prev = s.end
		if !seen[s.entity] {
			seen[s.entity] = true
			labels = append(labels, string(s.entity))
		}
	}
	out = append(out, text[prev:]...)

	return string(out), labels
}

// resolveOverlaps sorts spans by start offset and drops any span that
// overlaps an already-accepted one, so the rewrite never corrupts offsets.
// Ties go to the span whose entity appears earlier in entityOrder, which is
// the order spans were collected in.
func resolveOverlaps(spans []span) []span {
	rank := make(map[Entity]int, len(entityOrder))
	for i, e := range entityOrder {
		rank[e] = i
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		if spans[i].end != spans[j].end {
			return spans[i].end > spans[j].end
		}
		return rank[spans[i].entity] < rank[spans[j].entity]
	})

	kept := spans[:0]
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		kept = append(kept, s)
		lastEnd = s.end
	}
	return kept
}

func placeholder(e Entity) string {
	return fmt.Sprintf("<%s>", strings.ToUpper(string(e)))
}
