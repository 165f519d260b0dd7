package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect establishes a PostgreSQL connection pool with retry logic.
// Uses linear backoff so simultaneously restarting services do not hammer a
// recovering database.
func Connect(ctx context.Context, connString string, cfg Config) (*pgxpool.Pool, error) {
	if connString == "" {
		return nil, ErrEmptyConnectionString
	}

	connConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	connConfig.MaxConns = cfg.MaxOpenConns
	connConfig.MinConns = cfg.MaxIdleConns
	connConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	connConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	connConfig.MaxConnLifetime = cfg.MaxConnLifetime

	// Attempt 1 waits RetryInterval, attempt 2 waits 2x, and so on.
	for i := 0; i < cfg.RetryAttempts; i++ {
		pool, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err != nil {
			time.Sleep(time.Duration(i+1) * cfg.RetryInterval)
			continue
		}

		// An actual ping catches authentication and permission issues that
		// pool construction alone does not.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			time.Sleep(time.Duration(i+1) * cfg.RetryInterval)
			continue
		}

		return pool, nil
	}

	return nil, ErrFailedToOpenDBConnection
}

// Pools is the full set of aliased connection pools the routing layer works
// with: one global pool plus one pool per tenant database.
type Pools struct {
	Global *pgxpool.Pool
	Tenant map[string]*pgxpool.Pool
}

// ConnectAll opens a pool for every entry in the databases table. On any
// failure the pools opened so far are closed before the error is returned,
// so a partially connected set never escapes.
func ConnectAll(ctx context.Context, dbs Databases, cfg Config) (*Pools, error) {
	global, err := Connect(ctx, dbs.Global, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", GlobalAlias, err)
	}

	pools := &Pools{
		Global: global,
		Tenant: make(map[string]*pgxpool.Pool, len(dbs.Tenants)),
	}
	for alias, dsn := range dbs.Tenants {
		pool, err := Connect(ctx, dsn, cfg)
		if err != nil {
			pools.Close()
			return nil, fmt.Errorf("connect %s: %w", alias, err)
		}
		pools.Tenant[alias] = pool
	}
	return pools, nil
}

// Get returns the pool behind an alias, the global pool for GlobalAlias.
func (p *Pools) Get(alias string) (*pgxpool.Pool, bool) {
	if alias == GlobalAlias {
		return p.Global, true
	}
	pool, ok := p.Tenant[alias]
	return pool, ok
}

// Close closes every pool in the set.
func (p *Pools) Close() {
	if p.Global != nil {
		p.Global.Close()
	}
	for _, pool := range p.Tenant {
		pool.Close()
	}
}
