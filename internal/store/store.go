// Package store provides the persistent local storage the session is
// mirrored into: a small string key/value space that survives restarts.
package store

import (
	"context"
	"errors"
)

// Keys under which the session is mirrored.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Storage defines the interface for persisting string values by key.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Put writes every entry atomically: either all entries are stored or none.
	Put(ctx context.Context, entries map[string]string) error

	// Delete removes the keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing store.
	Close() error
}
