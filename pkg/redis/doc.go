// Package redis bootstraps the go-redis client used by the shared tenant
// resolution cache.
//
// Connect parses REDIS_URL style configuration, retries until the server
// answers a ping or the attempts run out, and returns a ready client.
// Healthcheck adapts the client into a probe function for readiness
// endpoints.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	cache := tenant.NewRedisCache(client, "tenants")
//
// Sentinel errors wrap the driver errors with errors.Join so callers can
// branch on them with errors.Is.
package redis
