// Package kv holds the key-value stores the console persists its session in.
package kv

import (
	"context"

	"github.com/jrsteele09/go-employee-console/internal/errors"
)

// ErrNotFound is returned by Get when the key has no value
var ErrNotFound = errors.ErrNotFound

// KeyValueStore represents a string key-value storage system providing
// Get, Set and Del. Deleting a missing key is not an error.
type KeyValueStore interface {
	// Get retrieves the value associated with the given key
	Get(ctx context.Context, key string) (string, error)
	// Set stores a key-value pair, overwriting any previous value
	Set(ctx context.Context, key, value string) error
	// Del removes the key-value pair
	Del(ctx context.Context, key string) error
}

// BatchWriter is implemented by stores that write several keys in one
// operation, so readers and watchers never see half of them.
type BatchWriter interface {
	SetAll(ctx context.Context, values map[string]string) error
}
