package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant represents one customer school, isolated at the database level.
// DatabaseAlias is the opaque handle to the tenant's physical database;
// each active tenant maps to exactly one alias and no two active tenants
// share one.
type Tenant struct {
	ID                 uuid.UUID `json:"id"`
	Domain             string    `json:"domain"`
	Name               string    `json:"name"`
	DatabaseAlias      string    `json:"database_alias"`
	SubscriptionActive bool      `json:"subscription_active"`
	CreatedAt          time.Time `json:"created_at"`
}

// Registry is the external tenant registry boundary. A key may be a tenant
// ID, a database alias, or an email domain; the registry decides which
// identifier formats it accepts.
//
// Lookup returns ErrTenantNotFound when no tenant matches the key.
type Registry interface {
	Lookup(ctx context.Context, key string) (*Tenant, error)
}
