// Package dbrouter maps every data access to the physical database it must
// run on.
//
// The Router answers one question per call: given an entity type, an
// operation kind, and the current request context, which pool handles it.
// Always-global and global-scoped entities pin to the global pool
// regardless of any resolved tenant. Tenant-scoped entities use the
// resolved tenant's pool when it passes a bounded liveness probe;
// otherwise reads degrade per the fallback policy with a warning, and
// writes fail — a rejected write is recoverable, a misrouted one is not.
//
// AcquireRead/AcquireWrite additionally check a connection out under a
// bounded timeout, honoring caller cancellation, so a saturated pool
// surfaces as ErrDatabaseUnavailable instead of an indefinite block.
//
// AllowRelation guards foreign keys: cross-tenant references are never
// permitted.
package dbrouter
