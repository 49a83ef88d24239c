package ports

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned when a source has no value for a secret
var ErrSecretNotFound = errors.New("secret not found")

// SecretSource resolves credentials by name
type SecretSource interface {
	Secret(ctx context.Context, name string) (string, error)
}
