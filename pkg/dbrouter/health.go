package dbrouter

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthChecker verifies a candidate pool is reachable before the router
// hands it out. Every failure, timeouts included, reads as "unreachable";
// nothing escapes to the router's callers.
type HealthChecker struct {
	timeout time.Duration
}

// NewHealthChecker creates a checker with the given probe timeout. A zero
// timeout falls back to two seconds.
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthChecker{timeout: timeout}
}

// Reachable runs a bounded liveness probe against the pool.
func (h *HealthChecker) Reachable(ctx context.Context, pool *pgxpool.Pool) bool {
	if pool == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return pool.Ping(ctx) == nil
}
