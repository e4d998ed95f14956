package cache

import (
	"context"
	"time"
)

// Store is a key-value cache for assembled pipeline results. Implementations
// must be safe for concurrent use; failures are absorbed, never returned.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, expiration time.Duration)
	Delete(ctx context.Context, key string)
}
