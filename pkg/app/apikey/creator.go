package apikey

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	domain "github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/apikey"
)

const keyPrefix = "ag_live_"

type Creator interface {
	Create(ctx context.Context, name string) (*domain.APIKey, error)
}

type creator struct {
	repo domain.Repository
}

func NewCreator(repository domain.Repository) Creator {
	return &creator{repo: repository}
}

func (c *creator) Create(ctx context.Context, name string) (*domain.APIKey, error) {
	id, err := uuid.NewV6()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key id: %w", err)
	}

	entity := &domain.APIKey{
		ID:     id,
		Key:    generateKey(),
		Name:   name,
		Active: true,
	}

	if err := c.repo.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to persist api key: %w", err)
	}

	return entity, nil
}

func generateKey() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return keyPrefix + uuid.NewString()
	}
	return keyPrefix + base64.RawURLEncoding.EncodeToString(bytes)
}
