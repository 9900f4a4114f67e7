package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/observability"
)

// KeyPrefix namespaces every key this service writes
const KeyPrefix = "reelspot:"

// RedisAdapter implements the CacheProvider interface using Redis
type RedisAdapter struct {
	client  *redis.Client
	metrics *observability.Metrics
}

// NewRedisAdapter creates a new Redis cache adapter. metrics may be nil.
func NewRedisAdapter(client *redis.Client, metrics *observability.Metrics) providers.CacheProvider {
	return &RedisAdapter{
		client:  client,
		metrics: metrics,
	}
}

// Get retrieves a value from cache and counts the hit or miss under the key's scope
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	scope := keyScope(key)
	result, err := a.client.Get(ctx, KeyPrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		observability.RecordCacheMiss(ctx, a.metrics, scope)
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("cache get %s: %w", scope, err)
	}
	observability.RecordCacheHit(ctx, a.metrics, scope)
	return result, true, nil
}

// Set stores a value with a time to live. A non-positive ttl is rejected so
// nothing is cached forever.
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache set %s: ttl must be positive", keyScope(key))
	}
	if err := a.client.Set(ctx, KeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", keyScope(key), err)
	}
	return nil
}

// keyScope is the key up to its last colon, e.g. "geo:v1:textsearch"
func keyScope(key string) string {
	if i := strings.LastIndex(key, ":"); i > 0 {
		return key[:i]
	}
	return "default"
}
