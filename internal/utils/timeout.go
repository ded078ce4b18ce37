package utils

import (
	"context"
	"time"
)

const DefaultStorageTimeout = 5 * time.Second

// WithStorageTimeout bounds a single call to a networked storage backend.
func WithStorageTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultStorageTimeout)
}
