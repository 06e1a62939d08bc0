package store

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// Backend is an opaque durable mapping from string keys to string values.
// Implementations must make each Put and Delete atomic for a single key and
// must be safe for concurrent use.
type Backend interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent, in which case err is nil.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// DeleteAll removes every key.
	DeleteAll(ctx context.Context) error
	// Keys enumerates every stored key. The whole key set is materialized,
	// so the cost grows with the backend's cardinality.
	Keys(ctx context.Context) ([]string, error)
	// Close releases the backend's resources.
	Close() error
}

// PrefixDeleter is implemented by backends that can delete every key with a
// given prefix natively, without enumerating all keys.
type PrefixDeleter interface {
	// DeleteWithPrefix removes every key starting with prefix and reports how
	// many were removed.
	DeleteWithPrefix(ctx context.Context, prefix string) (int, error)
}
