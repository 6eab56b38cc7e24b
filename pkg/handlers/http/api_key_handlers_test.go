package http_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/koppalanaveenkumar/ai-guardrails/pkg/domain/apikey"
	handlers "github.com/koppalanaveenkumar/ai-guardrails/pkg/handlers/http"
)

type mockKeyRepo struct {
	keys          []domain.APIKey
	created       []*domain.APIKey
	deactivated   []uuid.UUID
	deactivateErr error
}

func (m *mockKeyRepo) GetByKey(_ context.Context, _ string) (*domain.APIKey, error) {
	return nil, domain.ErrNotFound
}

func (m *mockKeyRepo) Create(_ context.Context, entity *domain.APIKey) error {
	m.created = append(m.created, entity)
	return nil
}

func (m *mockKeyRepo) List(_ context.Context) ([]domain.APIKey, error) {
	return m.keys, nil
}

func (m *mockKeyRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if m.deactivateErr != nil {
		return m.deactivateErr
	}
	m.deactivated = append(m.deactivated, id)
	return nil
}

type mockCreatorService struct {
	key *domain.APIKey
	err error
}

func (m *mockCreatorService) Create(_ context.Context, name string) (*domain.APIKey, error) {
	if m.err != nil {
		return nil, m.err
	}
	key := *m.key
	key.Name = name
	return &key, nil
}

func TestCreateAPIKeyHandler_ReturnsRawTokenOnce(t *testing.T) {
	creator := &mockCreatorService{key: &domain.APIKey{
		ID:     uuid.New(),
		Key:    "ag_live_secret",
		Active: true,
	}}

	app := fiber.New()
	app.Post("/keys", handlers.NewCreateAPIKeyHandler(logrus.New(), creator).Handle)

	req := httptest.NewRequest("POST", "/keys", bytes.NewBufferString(`{"name": "ci"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, "ag_live_secret", body["key"])
	assert.Equal(t, "ci", body["name"])
}

func TestCreateAPIKeyHandler_DefaultName(t *testing.T) {
	creator := &mockCreatorService{key: &domain.APIKey{ID: uuid.New(), Key: "ag_live_x", Active: true}}

	app := fiber.New()
	app.Post("/keys", handlers.NewCreateAPIKeyHandler(logrus.New(), creator).Handle)

	req := httptest.NewRequest("POST", "/keys", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, "Default Key", body["name"])
}

func TestListAPIKeysHandler_NeverExposesTokens(t *testing.T) {
	repo := &mockKeyRepo{keys: []domain.APIKey{
		{ID: uuid.New(), Key: "ag_live_one", Name: "one", Active: true},
		{ID: uuid.New(), Key: "ag_live_two", Name: "two", Active: false},
	}}

	app := fiber.New()
	app.Get("/keys", handlers.NewListAPIKeysHandler(logrus.New(), repo).Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/keys", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []map[string]interface{}
	decodeBody(t, resp.Body, &body)
	require.Len(t, body, 2)
	for _, key := range body {
		assert.Empty(t, key["key"])
	}
}

func TestDeleteAPIKeyHandler_SoftDeletes(t *testing.T) {
	repo := &mockKeyRepo{}
	keyID := uuid.New()

	app := fiber.New()
	app.Delete("/keys/:key_id", handlers.NewDeleteAPIKeyHandler(logrus.New(), repo).Handle)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/keys/"+keyID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Len(t, repo.deactivated, 1)
	assert.Equal(t, keyID, repo.deactivated[0])
}

func TestDeleteAPIKeyHandler_UnknownKey(t *testing.T) {
	repo := &mockKeyRepo{deactivateErr: domain.ErrNotFound}

	app := fiber.New()
	app.Delete("/keys/:key_id", handlers.NewDeleteAPIKeyHandler(logrus.New(), repo).Handle)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/keys/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteAPIKeyHandler_MalformedID(t *testing.T) {
	repo := &mockKeyRepo{}

	app := fiber.New()
	app.Delete("/keys/:key_id", handlers.NewDeleteAPIKeyHandler(logrus.New(), repo).Handle)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/keys/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
