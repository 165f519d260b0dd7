package tenant

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// CacheConfig controls resolution memoization.
type CacheConfig struct {
	TTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"1h"` // TTL is how long a resolved tenant is served without a registry round-trip.
}

// ResolutionCache memoizes Registry lookups with a TTL so a registry
// round-trip is not paid on every request. Staleness is bounded by the TTL
// and, for out-of-band deactivation events, by explicit Invalidate calls.
type ResolutionCache struct {
	cache    Cache
	registry Registry
	ttl      time.Duration
	log      *slog.Logger
}

// NewResolutionCache builds a ResolutionCache over the given cache backend
// and registry. A zero ttl falls back to one hour. A nil log falls back to
// slog.Default().
func NewResolutionCache(cache Cache, registry Registry, ttl time.Duration, log *slog.Logger) *ResolutionCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &ResolutionCache{cache: cache, registry: registry, ttl: ttl, log: log}
}

// GetOrLoad returns the tenant for a lookup key, serving an unexpired cache
// entry when present and consulting the registry otherwise. The registry
// call happens outside any cache lock. Inactive tenants are never cached as
// usable: the subscription flag is re-checked on every hit and
// ErrInactiveTenant is returned for them.
func (c *ResolutionCache) GetOrLoad(ctx context.Context, key string) (*Tenant, error) {
	if cached, ok := c.cache.Get(ctx, key); ok {
		if !cached.SubscriptionActive {
			// Deactivated while cached. Drop the entry so a reactivation
			// becomes visible on the next load.
			c.cache.Delete(ctx, key)
			return nil, ErrInactiveTenant
		}
		return cached, nil
	}

	t, err := c.registry.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, err
		}
		return nil, errors.Join(ErrTenantNotFound, err)
	}
	if !t.SubscriptionActive {
		c.log.WarnContext(ctx, "tenant subscription inactive",
			slog.String("tenant_key", key), slog.String("tenant", t.Name))
		return nil, ErrInactiveTenant
	}

	c.cache.Set(ctx, key, t, c.ttl)
	return t, nil
}

// Invalidate evicts a key out of band, e.g. when a subscription is
// cancelled or a school is reassigned to another database.
func (c *ResolutionCache) Invalidate(ctx context.Context, key string) {
	c.cache.Delete(ctx, key)
	c.log.DebugContext(ctx, "tenant cache entry invalidated", slog.String("tenant_key", key))
}
