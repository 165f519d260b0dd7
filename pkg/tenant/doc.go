// Package tenant implements tenant resolution for the multi-tenant routing
// core: deciding, once per request, which database alias the request's data
// access should land on, and carrying that decision through the request's
// lifetime.
//
// # Architecture
//
// Four cooperating pieces:
//
//  1. Registry — the external tenant registry boundary, looked up by tenant
//     key (id, alias, or email domain).
//  2. ResolutionCache — TTL memoization of registry lookups with explicit
//     out-of-band invalidation.
//  3. Resolver — the priority resolution algorithm: system paths pin to the
//     global database, unauthenticated callers get global, authenticated
//     callers get their assigned tenant, and only superusers may carry a
//     validated override. Rejected and unauthorized overrides are logged,
//     never honored.
//  4. RequestContext — the per-request container installed by Begin,
//     populated exactly once, and torn down unconditionally by End.
//
// # Usage
//
//	cache := tenant.NewResolutionCache(tenant.NewMemoryCache(), registry, time.Hour, log)
//	resolver := tenant.NewResolver(cache, databases, tenant.WithResolverLogger(log))
//
//	mux.Use(tenant.Middleware(identityProvider, resolver,
//		tenant.WithSkipPaths([]string{"/health"}),
//	))
//
// Handlers and repositories then reach the decision through the connection
// router (package dbrouter), which reads the RequestContext from ctx.
//
// # Isolation
//
// The decision travels only inside context.Context. There is no ambient or
// thread-local state, so no unit of work can observe another's tenant; End
// additionally clears the container so even a leaked pointer goes inert at
// request end.
package tenant
