// Package pg bootstraps the aliased PostgreSQL pool set the routing layer
// runs on, using the pgx/v5 driver.
//
// The set of physical databases is described by a small YAML table mapping
// one reserved "global" alias plus any number of tenant aliases to
// connection strings:
//
//	global: postgres://app@pg-global/schoolara
//	tenants:
//	  blue: postgres://app@pg-blue/schoolara
//	  green: postgres://app@pg-green/schoolara
//
// ConnectAll opens one pgxpool.Pool per entry, with retry and backoff, and
// returns them as a Pools value addressed by alias. Pool tuning (size,
// lifetime, health-check cadence) is shared across aliases and comes from
// environment variables via Config.
//
// Error helpers (IsNotFoundError, IsDuplicateKeyError, ...) classify pgx
// errors so business callers never match on SQLSTATE strings themselves.
package pg
