package dbrouter_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolara/schoolara/pkg/dbrouter"
	"github.com/schoolara/schoolara/pkg/entity"
	"github.com/schoolara/schoolara/pkg/pg"
	"github.com/schoolara/schoolara/pkg/tenant"
)

// fakeProber marks every pool reachable unless flagged down, so routing
// decisions can be tested without live databases.
type fakeProber struct {
	down map[*pgxpool.Pool]bool
}

func (p *fakeProber) Reachable(_ context.Context, pool *pgxpool.Pool) bool {
	return pool != nil && !p.down[pool]
}

// newIdlePool creates a pool that never dials: pgxpool connects lazily and
// these tests only compare pool identity.
func newIdlePool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(context.Background(), "postgres://app@127.0.0.1:5432/schoolara")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func newTestManifest(t *testing.T) *entity.Manifest {
	t.Helper()
	m, err := entity.NewManifest(map[string]entity.Scope{
		"accounts.user":    entity.AlwaysGlobal,
		"accounts.school":  entity.GlobalScoped,
		"students.student": entity.TenantScoped,
		"fees.invoice":     entity.TenantScoped,
	})
	require.NoError(t, err)
	return m
}

type routerFixture struct {
	router *dbrouter.Router
	pools  *pg.Pools
	prober *fakeProber
}

func newRouterFixture(t *testing.T, cfg dbrouter.Config, tenantAliases ...string) *routerFixture {
	t.Helper()

	pools := &pg.Pools{
		Global: newIdlePool(t),
		Tenant: make(map[string]*pgxpool.Pool, len(tenantAliases)),
	}
	for _, alias := range tenantAliases {
		pools.Tenant[alias] = newIdlePool(t)
	}

	prober := &fakeProber{down: make(map[*pgxpool.Pool]bool)}
	return &routerFixture{
		router: dbrouter.New(pools, newTestManifest(t), cfg, dbrouter.WithProber(prober)),
		pools:  pools,
		prober: prober,
	}
}

// tenantCtx yields a request context resolved to the given tenant alias.
func tenantCtx(t *testing.T, alias string, databases pg.Databases) (context.Context, *tenant.RequestContext) {
	t.Helper()

	ctx, rc := tenant.Begin(context.Background(), tenant.Meta{Path: "/students/"})
	t.Cleanup(func() { tenant.End(rc) })

	cache := tenant.NewMemoryCache()
	t.Cleanup(func() { cache.Close() })
	registry := staticRegistry{alias: &tenant.Tenant{
		Name: alias, DatabaseAlias: alias, SubscriptionActive: true,
	}}
	resolver := tenant.NewResolver(tenant.NewResolutionCache(cache, registry, time.Hour, nil), databases)

	got, err := resolver.Resolve(ctx, tenant.Identity{Authenticated: true, TenantKey: alias}, tenant.OverrideSignal{})
	require.NoError(t, err)
	require.Equal(t, alias, got)
	return ctx, rc
}

type staticRegistry map[string]*tenant.Tenant

func (r staticRegistry) Lookup(_ context.Context, key string) (*tenant.Tenant, error) {
	if t, ok := r[key]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func dbs(aliases ...string) pg.Databases {
	tenants := make(map[string]string, len(aliases))
	for _, a := range aliases {
		tenants[a] = "postgres://app@pg-" + a + "/schoolara"
	}
	return pg.Databases{Global: "postgres://app@pg-global/schoolara", Tenants: tenants}
}

func TestRouter_GlobalScopes(t *testing.T) {
	t.Parallel()

	t.Run("always-global pins to global regardless of resolved tenant", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "blue")
		ctx, _ := tenantCtx(t, "blue", dbs("blue"))

		read, err := f.router.Read(ctx, "accounts.user")
		require.NoError(t, err)
		assert.Same(t, f.pools.Global, read)

		write, err := f.router.Write(ctx, "accounts.user")
		require.NoError(t, err)
		assert.Same(t, f.pools.Global, write)
	})

	t.Run("global-scoped routes to global", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "blue")
		ctx, _ := tenantCtx(t, "blue", dbs("blue"))

		pool, err := f.router.Write(ctx, "accounts.school")
		require.NoError(t, err)
		assert.Same(t, f.pools.Global, pool)
	})

	t.Run("unknown entity type is a configuration error", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "blue")
		ctx, _ := tenantCtx(t, "blue", dbs("blue"))

		_, err := f.router.Read(ctx, "uniforms.uniform")
		assert.ErrorIs(t, err, entity.ErrUnknownEntityType)

		_, err = f.router.Write(ctx, "uniforms.uniform")
		assert.ErrorIs(t, err, entity.ErrUnknownEntityType)
	})
}

func TestRouter_TenantScoped(t *testing.T) {
	t.Parallel()

	t.Run("resolved tenant gets its own pool for reads and writes", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "blue", "green")
		ctx, _ := tenantCtx(t, "blue", dbs("blue", "green"))

		read, err := f.router.Read(ctx, "students.student")
		require.NoError(t, err)
		assert.Same(t, f.pools.Tenant["blue"], read)

		write, err := f.router.Write(ctx, "fees.invoice")
		require.NoError(t, err)
		assert.Same(t, f.pools.Tenant["blue"], write)
	})

	t.Run("every access under one context goes to the same tenant", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "blue", "green")
		ctx, _ := tenantCtx(t, "green", dbs("blue", "green"))

		for i := 0; i < 5; i++ {
			pool, err := f.router.Write(ctx, "students.student")
			require.NoError(t, err)
			assert.Same(t, f.pools.Tenant["green"], pool)
		}
	})

	t.Run("unresolved read falls back to global", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "blue")
		ctx, rc := tenant.Begin(context.Background(), tenant.Meta{})
		defer tenant.End(rc)

		pool, err := f.router.Read(ctx, "students.student")
		require.NoError(t, err)
		assert.Same(t, f.pools.Global, pool)
	})

	t.Run("missing request context read falls back to global", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "blue")

		pool, err := f.router.Read(context.Background(), "students.student")
		require.NoError(t, err)
		assert.Same(t, f.pools.Global, pool)
	})

	t.Run("unresolved write fails", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "blue")
		ctx, rc := tenant.Begin(context.Background(), tenant.Meta{})
		defer tenant.End(rc)

		_, err := f.router.Write(ctx, "students.student")
		assert.ErrorIs(t, err, dbrouter.ErrTenantNotResolved)
	})

	t.Run("unreachable tenant db: read degrades, write fails", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "red")
		ctx, _ := tenantCtx(t, "red", dbs("red"))
		f.prober.down[f.pools.Tenant["red"]] = true

		read, err := f.router.Read(ctx, "students.student")
		require.NoError(t, err)
		assert.Same(t, f.pools.Global, read)

		_, err = f.router.Write(ctx, "students.student")
		assert.ErrorIs(t, err, dbrouter.ErrDatabaseUnavailable)
	})

	t.Run("torn down context behaves as unresolved", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "blue")
		ctx, rc := tenantCtx(t, "blue", dbs("blue"))
		tenant.End(rc)

		pool, err := f.router.Read(ctx, "students.student")
		require.NoError(t, err)
		assert.Same(t, f.pools.Global, pool, "a torn down context must not carry its alias")

		_, err = f.router.Write(ctx, "students.student")
		assert.ErrorIs(t, err, dbrouter.ErrTenantNotResolved)
	})
}

func TestRouter_EmergencyTenantFallback(t *testing.T) {
	t.Parallel()

	t.Run("disabled by default", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{}, "red", "blue")
		ctx, _ := tenantCtx(t, "red", dbs("red", "blue"))
		f.prober.down[f.pools.Tenant["red"]] = true

		pool, err := f.router.Read(ctx, "students.student")
		require.NoError(t, err)
		assert.Same(t, f.pools.Global, pool)
	})

	t.Run("enabled substitutes a reachable tenant pool for reads", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{EmergencyTenantFallback: true}, "red", "blue", "green")
		ctx, _ := tenantCtx(t, "red", dbs("red", "blue", "green"))
		f.prober.down[f.pools.Tenant["red"]] = true
		f.prober.down[f.pools.Tenant["blue"]] = true

		pool, err := f.router.Read(ctx, "students.student")
		require.NoError(t, err)
		assert.Same(t, f.pools.Tenant["green"], pool)
	})

	t.Run("never applies to writes", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{EmergencyTenantFallback: true}, "red", "blue")
		ctx, _ := tenantCtx(t, "red", dbs("red", "blue"))
		f.prober.down[f.pools.Tenant["red"]] = true

		_, err := f.router.Write(ctx, "students.student")
		assert.ErrorIs(t, err, dbrouter.ErrDatabaseUnavailable)
	})

	t.Run("falls to global when no tenant pool is reachable", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{EmergencyTenantFallback: true}, "red", "blue")
		ctx, _ := tenantCtx(t, "red", dbs("red", "blue"))
		f.prober.down[f.pools.Tenant["red"]] = true
		f.prober.down[f.pools.Tenant["blue"]] = true

		pool, err := f.router.Read(ctx, "students.student")
		require.NoError(t, err)
		assert.Same(t, f.pools.Global, pool)
	})
}

func TestRouter_AllowRelation(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, dbrouter.Config{}, "blue", "green")

	t.Run("always-global relates to anything", func(t *testing.T) {
		t.Parallel()

		ok, err := f.router.AllowRelation("accounts.user", pg.GlobalAlias, "students.student", "blue")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("same tenant alias relates", func(t *testing.T) {
		t.Parallel()

		ok, err := f.router.AllowRelation("students.student", "blue", "fees.invoice", "blue")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("cross-tenant never relates", func(t *testing.T) {
		t.Parallel()

		ok, err := f.router.AllowRelation("students.student", "blue", "fees.invoice", "green")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("global-scoped to tenant-scoped does not relate", func(t *testing.T) {
		t.Parallel()

		ok, err := f.router.AllowRelation("accounts.school", pg.GlobalAlias, "students.student", "blue")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("global-scoped pair relates", func(t *testing.T) {
		t.Parallel()

		ok, err := f.router.AllowRelation("accounts.school", pg.GlobalAlias, "accounts.school", pg.GlobalAlias)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown type errors", func(t *testing.T) {
		t.Parallel()

		_, err := f.router.AllowRelation("uniforms.uniform", "blue", "students.student", "blue")
		assert.ErrorIs(t, err, entity.ErrUnknownEntityType)
	})
}

func TestRouter_Acquire(t *testing.T) {
	t.Parallel()

	t.Run("acquire fails bounded when the database cannot be dialed", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{AcquireTimeout: 500 * time.Millisecond}, "blue")
		ctx, _ := tenantCtx(t, "blue", dbs("blue"))

		// The fixture pools point at nothing; the checkout must fail with
		// the router's error, not hang.
		_, err := f.router.AcquireWrite(ctx, "students.student")
		assert.ErrorIs(t, err, dbrouter.ErrDatabaseUnavailable)
	})

	t.Run("acquire respects caller cancellation", func(t *testing.T) {
		t.Parallel()

		f := newRouterFixture(t, dbrouter.Config{AcquireTimeout: time.Minute}, "blue")
		ctx, _ := tenantCtx(t, "blue", dbs("blue"))
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := f.router.AcquireRead(ctx, "students.student")
		assert.ErrorIs(t, err, dbrouter.ErrDatabaseUnavailable)
	})
}
