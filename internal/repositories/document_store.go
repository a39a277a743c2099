package repositories

import (
	"context"

	"github.com/google/uuid"
)

// DocumentStore is the key-value primitive set every backend provides.
// Get returns nil, nil for an absent key. Set creates or overwrites the value
// at key. Push stores a value under a freshly generated key and returns it.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Push(ctx context.Context, value []byte) (string, error)
	Ping(ctx context.Context) error
	Close()
}

// NewKey generates the opaque key used for pushed documents.
func NewKey() string {
	return uuid.NewString()
}
