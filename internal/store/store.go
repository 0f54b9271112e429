package store

import (
	"context"
	"errors"

	"github.com/benvon/careerontrack/internal/apperr"
)

// Keys owned by the session manager
const (
	KeyAuthToken = "auth_token"
	KeyUser      = "user"
	KeyThemeMode = "themeMode"
)

// ErrNotFound is returned by Get when the key is absent
var ErrNotFound = errors.New("key not found")

// KVStore is durable local storage keyed by string.
// Failures other than ErrNotFound are returned as *apperr.PersistenceError.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

func persistenceError(op, key string, err error) error {
	return &apperr.PersistenceError{Op: op, Key: key, Err: err}
}
