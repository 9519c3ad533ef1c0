package kv

import "context"

// Repository stores opaque values by key.
type Repository interface {
	// Get returns the stored value, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or overwrites the value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Entry is a key/value pair written by Batcher.SetMany.
type Entry struct {
	Key   string
	Value []byte
}

// Batcher is implemented by repositories that can write several entries
// atomically.
type Batcher interface {
	SetMany(ctx context.Context, entries ...Entry) error
}
