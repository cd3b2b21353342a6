// Package kvstore is the ephemeral key-value store used for sessions,
// verification codes and attempt counters.
package kvstore

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	// Get returns ErrNotFound for absent or expired keys.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Take returns the value and deletes the key in one step.
	Take(ctx context.Context, key string) (string, error)
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
	// Incr atomically increments the counter at key and returns the new
	// value with its remaining lifetime. The window starts with the first
	// increment and is not extended by later ones.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
