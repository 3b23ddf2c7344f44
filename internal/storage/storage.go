// Package storage defines the key-value port the client stores persist to,
// plus an in-memory implementation.
package storage

import (
	"context"
	"errors"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = apperrors.Wrap(apperrors.ErrNotFound, "storage key")

// IsNotFound reports whether err means the key is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// KV is a string key-value store. Values are written whole; there are no
// partial updates.
type KV interface {
	// Get returns the value stored under key or an error matching ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
