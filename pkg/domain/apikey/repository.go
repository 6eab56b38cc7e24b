package apikey

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("api key not found")

type Repository interface {
	GetByKey(ctx context.Context, key string) (*APIKey, error)
	Create(ctx context.Context, entity *APIKey) error
	List(ctx context.Context) ([]APIKey, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
