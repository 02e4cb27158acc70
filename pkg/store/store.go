// Package store provides the key-value persistence behind templates and
// usage accounting.
//
// Values are opaque byte slices; callers usually store JSON through
// [GetJSON] and [SetJSON]. Keys are namespaced by convention with a
// "kind:" prefix ("template:3f2c...", "usage:default") so that [Store.List]
// can enumerate one kind.
//
// Backends:
//
//   - [MemoryStore]: process memory, for tests and one-shot runs
//   - [FileStore]: one file per key under a directory, the CLI default
//   - [RedisStore]: Redis, keys under a configurable prefix
//   - [MongoStore]: MongoDB, one document per key
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is a string-keyed blob store.
type Store interface {
	// Get returns the value for key. A missing key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all keys with the given prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// GetJSON loads key and decodes it into v. It reports whether the key existed.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
