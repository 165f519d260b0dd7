package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant cannot be found in the registry.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInactiveTenant is returned when a tenant exists but its subscription is not active.
	ErrInactiveTenant = errors.New("tenant subscription is inactive")

	// ErrNoRequestContext is returned when an operation requires a request
	// context and none was installed by Begin.
	ErrNoRequestContext = errors.New("no request context installed")

	// ErrAlreadyResolved is returned when resolution is attempted on a
	// request context that already carries a resolved alias.
	ErrAlreadyResolved = errors.New("request context already resolved")

	// ErrContextTornDown is returned when a request context is used after End.
	ErrContextTornDown = errors.New("request context torn down")

	// ErrInvalidOverride marks a superuser-supplied override that does not
	// name a known, active tenant. The override is rejected and resolution
	// continues without it.
	ErrInvalidOverride = errors.New("invalid tenant override")
)
