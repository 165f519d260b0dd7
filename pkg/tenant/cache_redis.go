package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache is a Redis-backed Cache for deployments with multiple
// application instances, so a registry lookup done by one instance serves
// them all. TTL enforcement is delegated to Redis key expiry.
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps an existing Redis client as a tenant Cache. The
// client's lifecycle stays with the caller; Close here is a no-op. Keys are
// namespaced with the given prefix (default "tenant:").
func NewRedisCache(client *redis.Client, prefix string) Cache {
	if prefix == "" {
		prefix = "tenant:"
	}
	return &redisCache{client: client, prefix: prefix}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		// Both cache misses and Redis failures read as a miss; the caller
		// falls through to the registry either way.
		return nil, false
	}

	var t Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		// Unreadable entries are dropped so they cannot wedge a key.
		c.client.Del(ctx, c.prefix+key)
		return nil, false
	}
	return &t, true
}

func (c *redisCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefix+key, raw, ttl)
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	c.client.Del(ctx, c.prefix+key)
}

func (c *redisCache) Close() error {
	return nil
}
