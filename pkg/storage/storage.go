package storage

import "context"

// Storage keeps export archives. Keys are slash separated and relative to the
// root of the backend.
type Storage interface {
	Write(ctx context.Context, key string, data []byte) error
}
