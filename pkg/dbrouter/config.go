package dbrouter

import "time"

// Config is the routing policy surface.
type Config struct {
	HealthCheckTimeout time.Duration `env:"ROUTER_HEALTHCHECK_TIMEOUT" envDefault:"2s"` // HealthCheckTimeout bounds the liveness probe run before a tenant pool is handed out.
	AcquireTimeout     time.Duration `env:"ROUTER_ACQUIRE_TIMEOUT" envDefault:"5s"`     // AcquireTimeout bounds how long a connection checkout may block before failing with ErrDatabaseUnavailable.

	// EmergencyTenantFallback redirects reads whose tenant database is
	// unreachable to an arbitrary reachable tenant database instead of the
	// global one. Off by default: serving one tenant's read from another
	// tenant's database is an isolation hazard and exists only for declared
	// emergencies.
	EmergencyTenantFallback bool `env:"ROUTER_EMERGENCY_TENANT_FALLBACK" envDefault:"false"`
}
