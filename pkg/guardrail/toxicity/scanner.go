package toxicity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/guard"
)

const (
	ScannerName   = "toxicity_scanner"
	moderationURL = "https://api.openai.com/v1/moderations"

	defaultRequestTimeout = 30 * time.Second
)

// Categories checked against the threshold, in report order.
var targetCategories = []string{
	"harassment",
	"harassment/threatening",
	"hate",
	"hate/threatening",
	"violence",
	"violence/graphic",
	"sexual",
	"self-harm",
}

// Classifier scores text across a fixed set of toxicity categories.
type Classifier interface {
	Classify(ctx context.Context, text string) (map[string]float64, error)
}

// Scanner blocks when any category score exceeds the threshold. A failing
// classifier backend fails open with a warning so a moderation outage never
// blocks legitimate traffic.
type Scanner struct {
	classifier Classifier
	threshold  float64
	logger     *logrus.Logger
}

func NewScanner(classifier Classifier, threshold float64, logger *logrus.Logger) *Scanner {
	return &Scanner{
		classifier: classifier,
		threshold:  threshold,
		logger:     logger,
	}
}

func (s *Scanner) Name() string {
	return ScannerName
}

func (s *Scanner) Scan(ctx context.Context, text string) (*guard.StageResult, error) {
	if s.classifier == nil {
		return &guard.StageResult{Passed: true}, nil
	}

	scores, err := s.classifier.Classify(ctx, text)
	if err != nil {
		s.logger.WithError(err).Warn("toxicity backend unavailable, failing open")
		return &guard.StageResult{Passed: true}, nil
	}

	var flags []string
	maxScore := 0.0
	for _, category := range targetCategories {
		score, ok := scores[category]
		if !ok {
			continue
		}
		if score > maxScore {
			maxScore = score
		}
		if score > s.threshold {
			flags = append(flags, category)
		}
	}
	sort.Strings(flags)

	if len(flags) > 0 {
		return &guard.StageResult{
			Passed: false,
			Reason: fmt.Sprintf("TOXIC_CONTENT: %s", strings.Join(flags, ", ")),
			Score:  maxScore,
			Labels: flags,
		}, nil
	}

	return &guard.StageResult{Passed: true, Score: maxScore}, nil
}

type moderationRequest struct {
	Input string `json:"input"`
	Model string `json:"model,omitempty"`
}

type moderationResponse struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories     map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

type openAIClassifier struct {
	client *fasthttp.Client
	apiKey string
	logger *logrus.Logger
}

// NewOpenAIClassifier scores text with the OpenAI moderation endpoint.
func NewOpenAIClassifier(client *fasthttp.Client, apiKey string, logger *logrus.Logger) Classifier {
	return &openAIClassifier{
		client: client,
		apiKey: apiKey,
		logger: logger,
	}
}

func (c *openAIClassifier) Classify(ctx context.Context, text string) (map[string]float64, error) {
	if c.apiKey == "" {
		return nil, errors.New("moderation API key not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(moderationRequest{
		Input: text,
		Model: "omni-moderation-latest",
	})
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(moderationURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.SetBody(payload)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.client.DoTimeout(req, resp, defaultRequestTimeout)
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.WithField("response", string(resp.Body())).Error("non-OK response from moderation API")
		return nil, fmt.Errorf("moderation API returned status %d", resp.StatusCode())
	}

	var modResp moderationResponse
	if err := json.Unmarshal(resp.Body(), &modResp); err != nil {
		return nil, err
	}
	if len(modResp.Results) == 0 {
		return nil, errors.New("no moderation results returned")
	}

	return modResp.Results[0].CategoryScores, nil
}
