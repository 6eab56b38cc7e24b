package common

type ContextKey string

const (
	ApiKeyIdContextKey ContextKey = "api_key_id"
)
