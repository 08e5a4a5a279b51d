package ports

import "context"

// SecretStore holds account credentials. Get wraps domain.ErrSecretNotFound when the
// key has no value in any backend.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
