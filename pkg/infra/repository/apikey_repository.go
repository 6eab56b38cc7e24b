package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/apikey"
)

type ApiKeyRepository struct {
	db *gorm.DB
}

func NewApiKeyRepository(db *gorm.DB) apikey.Repository {
	return &ApiKeyRepository{
		db: db,
	}
}

func (r *ApiKeyRepository) GetByKey(ctx context.Context, key string) (*apikey.APIKey, error) {
	entity := new(apikey.APIKey)
	if err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apikey.ErrNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *ApiKeyRepository) Create(ctx context.Context, entity *apikey.APIKey) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *ApiKeyRepository) List(ctx context.Context) ([]apikey.APIKey, error) {
	var keys []apikey.APIKey
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Find(&keys).Error
	return keys, err
}

func (r *ApiKeyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&apikey.APIKey{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apikey.ErrNotFound
	}
	return nil
}
