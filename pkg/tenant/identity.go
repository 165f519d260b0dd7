package tenant

import (
	"net/http"

	"github.com/google/uuid"
)

// Identity is the set of caller facts the routing core needs, produced once
// per request by the identity subsystem. TenantKey is the lookup key of the
// caller's assigned tenant; empty means no assignment. The core never
// probes the user object beyond these facts.
type Identity struct {
	Authenticated bool
	Superuser     bool
	UserID        uuid.UUID
	TenantKey     string
}

// Anonymous is the identity of an unauthenticated caller.
var Anonymous = Identity{}

// IdentityProvider is the boundary to the identity/session subsystem. The
// core does not authenticate; it consumes the facts the provider derived
// from the request's credentials.
type IdentityProvider interface {
	Identify(r *http.Request) Identity
}

// IdentityProviderFunc adapts a function to the IdentityProvider interface.
type IdentityProviderFunc func(r *http.Request) Identity

func (f IdentityProviderFunc) Identify(r *http.Request) Identity {
	return f(r)
}
