// Package storage provides the persistent key-value boundary the
// transaction repository writes through. A single logical key maps to a
// JSON-serialized array of records; the backends only move bytes.
package storage

import "context"

// KV is the port for persistent key-value backends.
type KV interface {
	// Get returns the value stored under key. ok is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
