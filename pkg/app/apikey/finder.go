package apikey

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	domain "github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/apikey"
)

// ErrInvalidAPIKey covers both unknown and revoked keys: callers are not
// told which, only that the credential is not accepted.
var ErrInvalidAPIKey = errors.New("invalid or missing API key")

type Finder interface {
	Find(ctx context.Context, key string) (*domain.APIKey, error)
}

type finder struct {
	repo   domain.Repository
	logger *logrus.Logger
}

func NewFinder(repository domain.Repository, logger *logrus.Logger) Finder {
	return &finder{
		repo:   repository,
		logger: logger,
	}
}

func (f *finder) Find(ctx context.Context, key string) (*domain.APIKey, error) {
	if key == "" {
		return nil, ErrInvalidAPIKey
	}

	entity, err := f.repo.GetByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			f.logger.WithError(err).Error("failed to fetch apikey from repository")
		}
		return nil, ErrInvalidAPIKey
	}

	if !entity.IsValid() {
		return nil, ErrInvalidAPIKey
	}

	return entity, nil
}
