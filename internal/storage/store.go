package storage

import "context"

// Store is the durable key-value persistence boundary. Implementations do
// not interpret values; callers own the serialized shape.
type Store interface {
	// Get returns the value for key, or ErrNotFound when absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
