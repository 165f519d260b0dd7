package dbrouter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schoolara/schoolara/pkg/entity"
	"github.com/schoolara/schoolara/pkg/pg"
	"github.com/schoolara/schoolara/pkg/tenant"
)

// Prober reports whether a candidate pool is reachable. Satisfied by
// *HealthChecker; tests substitute fakes.
type Prober interface {
	Reachable(ctx context.Context, pool *pgxpool.Pool) bool
}

// Option configures a Router.
type Option func(*Router)

// WithProber replaces the liveness prober.
func WithProber(p Prober) Option {
	return func(r *Router) {
		if p != nil {
			r.prober = p
		}
	}
}

// WithLogger sets the logger fallback warnings go to.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// Router maps (entity type, operation, request context) to the concrete
// database pool the operation must run on.
type Router struct {
	pools    *pg.Pools
	manifest *entity.Manifest
	cfg      Config
	prober   Prober
	log      *slog.Logger
}

// New builds a Router over the aliased pool set and the entity manifest.
func New(pools *pg.Pools, manifest *entity.Manifest, cfg Config, opts ...Option) *Router {
	r := &Router{
		pools:    pools,
		manifest: manifest,
		cfg:      cfg,
		prober:   NewHealthChecker(cfg.HealthCheckTimeout),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns the pool a read of the entity type must use under the
// current request context. Tenant-scoped reads whose tenant database is
// missing or unreachable degrade per the read fallback policy, with a
// warning naming the entity type and reason.
func (r *Router) Read(ctx context.Context, entityType string) (*pgxpool.Pool, error) {
	return r.route(ctx, entityType, opRead)
}

// Write returns the pool a write of the entity type must use. Tenant-scoped
// writes with no resolved, reachable tenant database fail with
// ErrTenantNotResolved or ErrDatabaseUnavailable; writes never fall back.
func (r *Router) Write(ctx context.Context, entityType string) (*pgxpool.Pool, error) {
	return r.route(ctx, entityType, opWrite)
}

type operation int

const (
	opRead operation = iota
	opWrite
)

func (o operation) String() string {
	if o == opWrite {
		return "write"
	}
	return "read"
}

func (r *Router) route(ctx context.Context, entityType string, op operation) (*pgxpool.Pool, error) {
	scope, err := r.manifest.ScopeOf(entityType)
	if err != nil {
		return nil, err
	}

	switch scope {
	case entity.AlwaysGlobal, entity.GlobalScoped:
		// AlwaysGlobal ignores the request context entirely; GlobalScoped
		// data has no per-tenant home either way.
		return r.pools.Global, nil
	}

	// Tenant scoped from here on.
	alias, resolved := r.resolvedTenantAlias(ctx)
	if resolved {
		if pool, ok := r.pools.Tenant[alias]; ok && r.prober.Reachable(ctx, pool) {
			return pool, nil
		}
		if op == opWrite {
			return nil, fmt.Errorf("%w: %s for %s", ErrDatabaseUnavailable, alias, entityType)
		}
		return r.readFallback(ctx, entityType, alias, "tenant database unreachable"), nil
	}

	if op == opWrite {
		return nil, fmt.Errorf("%w: %s", ErrTenantNotResolved, entityType)
	}
	return r.readFallback(ctx, entityType, "", "no tenant resolved"), nil
}

// resolvedTenantAlias extracts the tenant alias from the request context.
// Resolution to the global database, an absent context, or a torn down one
// all read as "not resolved to a tenant".
func (r *Router) resolvedTenantAlias(ctx context.Context) (string, bool) {
	rc, ok := tenant.FromContext(ctx)
	if !ok {
		return "", false
	}
	return rc.TenantAlias()
}

// readFallback applies the read fallback policy: the global pool, or, when
// the emergency flag is set, an arbitrary reachable tenant pool. Always
// warns with the entity type and reason.
func (r *Router) readFallback(ctx context.Context, entityType, failedAlias, reason string) *pgxpool.Pool {
	if r.cfg.EmergencyTenantFallback {
		// Sorted iteration keeps the substitute stable between calls.
		aliases := make([]string, 0, len(r.pools.Tenant))
		for alias := range r.pools.Tenant {
			if alias != failedAlias {
				aliases = append(aliases, alias)
			}
		}
		sort.Strings(aliases)
		for _, alias := range aliases {
			pool := r.pools.Tenant[alias]
			if r.prober.Reachable(ctx, pool) {
				r.log.WarnContext(ctx, "read falling back to another tenant database",
					slog.String("entity_type", entityType),
					slog.String("reason", reason),
					slog.String("failed_alias", failedAlias),
					slog.String("substitute_alias", alias))
				return pool
			}
		}
	}

	r.log.WarnContext(ctx, "read falling back to global database",
		slog.String("entity_type", entityType),
		slog.String("reason", reason),
		slog.String("failed_alias", failedAlias))
	return r.pools.Global
}

// AcquireRead routes a read and checks a connection out of the chosen pool
// under the bounded acquire timeout. The caller must Release the
// connection. Cancelling ctx cancels the acquisition without leaking a
// checked-out connection.
func (r *Router) AcquireRead(ctx context.Context, entityType string) (*pgxpool.Conn, error) {
	pool, err := r.Read(ctx, entityType)
	if err != nil {
		return nil, err
	}
	return r.acquire(ctx, pool)
}

// AcquireWrite routes a write and checks a connection out of the chosen
// pool under the bounded acquire timeout.
func (r *Router) AcquireWrite(ctx context.Context, entityType string) (*pgxpool.Conn, error) {
	pool, err := r.Write(ctx, entityType)
	if err != nil {
		return nil, err
	}
	return r.acquire(ctx, pool)
}

func (r *Router) acquire(ctx context.Context, pool *pgxpool.Pool) (*pgxpool.Conn, error) {
	timeout := r.cfg.AcquireTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	acquireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := pool.Acquire(acquireCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	return conn, nil
}
