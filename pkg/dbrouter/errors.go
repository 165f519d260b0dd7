package dbrouter

import "errors"

var (
	// ErrTenantNotResolved is returned when a write to a tenant-scoped
	// entity is attempted and the request carries no resolved tenant.
	// Writes never fall back: a misrouted write is worse than a rejected
	// request.
	ErrTenantNotResolved = errors.New("no tenant resolved for tenant-scoped write")

	// ErrDatabaseUnavailable is returned when the resolved tenant database
	// fails its liveness probe, or when a connection cannot be acquired
	// within the bounded timeout.
	ErrDatabaseUnavailable = errors.New("database unavailable")
)
