// Package cache stores serialized audit reports for the lifetime of a
// share link, behind a backend interface with in-memory and Redis
// implementations.
package cache

import (
	"context"
	"time"
)

// Backend is the storage interface for cached reports.
type Backend interface {
	// Get retrieves a value. Returns (value, found, error).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}
