package providers

import (
	"context"
	"time"
)

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache. found is false on a miss.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores a value in cache with a time to live
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
