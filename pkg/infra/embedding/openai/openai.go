package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/embedding"
)

const (
	embeddingsURL         = "https://api.openai.com/v1/embeddings"
	defaultModel          = "text-embedding-3-small"
	defaultRequestTimeout = 30 * time.Second
)

var ErrNonOKResponse = errors.New("non-OK response from embeddings API")

type embeddingService struct {
	client *fasthttp.Client
	apiKey string
	logger *logrus.Logger
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingResponse struct {
	Data []embeddingData `json:"data"`
}

func NewEmbeddingService(client *fasthttp.Client, apiKey string, logger *logrus.Logger) embedding.Creator {
	return &embeddingService{
		client: client,
		apiKey: apiKey,
		logger: logger,
	}
}

func (s *embeddingService) Generate(ctx context.Context, text string) ([]float64, error) {
	if s.apiKey == "" {
		return nil, errors.New("embeddings API key not configured")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pBytes, err := json.Marshal(embeddingRequest{
		Model: defaultModel,
		Input: text,
	})
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(embeddingsURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.SetBody(pBytes)

	if err := s.doRequestWithContext(ctx, req, resp); err != nil {
		return nil, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		s.logger.WithField("response", string(resp.Body())).Error("non-OK response from embeddings API")
		return nil, fmt.Errorf("%w: %d", ErrNonOKResponse, resp.StatusCode())
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(resp.Body(), &embResp); err != nil {
		s.logger.WithError(err).Error("failed to decode embeddings response")
		return nil, err
	}

	if len(embResp.Data) == 0 || len(embResp.Data[0].Embedding) == 0 {
		return nil, errors.New("empty embeddings from API")
	}

	return embResp.Data[0].Embedding, nil
}

func (s *embeddingService) doRequestWithContext(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.client.DoTimeout(req, resp, defaultRequestTimeout)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			s.logger.WithError(err).Error("error performing HTTP request for embeddings")
		}
		return err
	}
}
