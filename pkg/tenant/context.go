package tenant

import (
	"context"
	"log/slog"

	"github.com/schoolara/schoolara/pkg/pg"
)

// Meta is the request metadata carried alongside the resolution.
type Meta struct {
	ClientIP  string
	SessionID string
	Path      string
	RequestID string
}

type rcState int

const (
	stateUnresolved rcState = iota
	stateResolved
	stateTornDown
)

// RequestContext is the per-unit-of-work container for the routing
// decision. One instance exists per in-flight request: created by Begin
// with no resolution, populated exactly once by the resolver, read many
// times by the connection router, and torn down unconditionally by End.
//
// A RequestContext belongs to a single unit of work and must never be
// shared with a concurrently executing one; it is deliberately
// unsynchronized.
type RequestContext struct {
	meta         Meta
	state        rcState
	alias        string
	viaOverride  bool
	superuserCtx bool
}

type rcKey struct{}

// Begin installs a fresh, unresolved RequestContext into ctx. It is the
// first step of handling any unit of work; the matching End call must run
// on every exit path.
func Begin(ctx context.Context, meta Meta) (context.Context, *RequestContext) {
	rc := &RequestContext{meta: meta}
	return context.WithValue(ctx, rcKey{}, rc), rc
}

// End tears the request context down. After End every accessor reports
// ErrContextTornDown, so a leaked reference cannot carry one request's
// tenant into another. End is idempotent.
func End(rc *RequestContext) {
	if rc == nil {
		return
	}
	rc.state = stateTornDown
	rc.alias = ""
	rc.viaOverride = false
}

// FromContext retrieves the current RequestContext.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(rcKey{}).(*RequestContext)
	return rc, ok
}

// Meta returns the request metadata.
func (rc *RequestContext) Meta() Meta {
	return rc.meta
}

// resolve records the routing decision. It may be called exactly once per
// request; a second call or a call after End is a programming error
// surfaced to the caller.
func (rc *RequestContext) resolve(alias string, viaOverride, superuser bool) error {
	switch rc.state {
	case stateTornDown:
		return ErrContextTornDown
	case stateResolved:
		return ErrAlreadyResolved
	}
	rc.state = stateResolved
	rc.alias = alias
	rc.viaOverride = viaOverride
	rc.superuserCtx = superuser
	return nil
}

// Resolved returns the resolved database alias. ok is false while the
// context is unresolved or after teardown.
func (rc *RequestContext) Resolved() (alias string, ok bool) {
	if rc.state != stateResolved {
		return "", false
	}
	return rc.alias, true
}

// TenantAlias returns the resolved alias when it names a tenant database,
// and ok=false when the request resolved to the global database or carries
// no resolution.
func (rc *RequestContext) TenantAlias() (alias string, ok bool) {
	a, ok := rc.Resolved()
	if !ok || a == pg.GlobalAlias {
		return "", false
	}
	return a, true
}

// ViaOverride reports whether the resolution came from a validated
// superuser override rather than the caller's own assignment.
func (rc *RequestContext) ViaOverride() bool {
	return rc.state == stateResolved && rc.viaOverride
}

// TornDown reports whether End has run.
func (rc *RequestContext) TornDown() bool {
	return rc.state == stateTornDown
}

// LogExtractor returns a logger context extractor that stamps the resolved
// alias onto every record logged under a request context.
func LogExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		rc, ok := FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		alias, ok := rc.Resolved()
		if !ok {
			return slog.Attr{}, false
		}
		return slog.String("tenant_alias", alias), true
	}
}
