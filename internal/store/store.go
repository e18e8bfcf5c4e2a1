// Package store provides the durable key-value storage shared by the
// snapshot cache and the persisted availability index.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("store object not found")

// ErrQuotaExceeded is returned by Put when the backend has no room left.
// A failed Put is what triggers cache eviction.
var ErrQuotaExceeded = errors.New("store quota exceeded")

// Store is a synchronous key-value store with a finite quota. Values are
// opaque serialized payloads; keys are flat namespaced strings. Single
// reader/writer access is assumed; concurrent refreshes of the same key are
// a benign lost-update.
type Store interface {
	// Get returns the value under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes the value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys enumerates all keys starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
