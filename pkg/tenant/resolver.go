package tenant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/schoolara/schoolara/pkg/pg"
)

// OverrideStore persists an accepted superuser override across requests,
// typically inside the caller's session. Implementations receive the
// request context and may be request-scoped.
type OverrideStore interface {
	Get(ctx context.Context) string
	Set(ctx context.Context, key string)
	Clear(ctx context.Context)
}

type noopOverrideStore struct{}

func (noopOverrideStore) Get(context.Context) string  { return "" }
func (noopOverrideStore) Set(context.Context, string) {}
func (noopOverrideStore) Clear(context.Context)       {}

// OverrideSignal is the out-of-band override input extracted from the
// request: a freshly requested tenant key (query parameter) and the store
// holding a previously accepted one. Either part may be absent.
type OverrideSignal struct {
	Requested string
	Store     OverrideStore
}

func (s OverrideSignal) store() OverrideStore {
	if s.Store == nil {
		return noopOverrideStore{}
	}
	return s.Store
}

// defaultSystemPrefixes classify administrative and asset paths that always
// work against the global database.
var defaultSystemPrefixes = []string{"/admin/", "/static/", "/media/"}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSystemPathPrefixes replaces the default system path classification.
func WithSystemPathPrefixes(prefixes []string) ResolverOption {
	return func(r *Resolver) { r.systemPrefixes = prefixes }
}

// WithResolverLogger sets the logger warnings and audit records go to.
func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// Resolver computes the database alias a request should use from the
// caller's identity facts and writes it into the request context.
type Resolver struct {
	cache          *ResolutionCache
	databases      pg.Databases
	systemPrefixes []string
	log            *slog.Logger
}

// NewResolver builds a Resolver over the resolution cache and the
// configured databases table.
func NewResolver(cache *ResolutionCache, databases pg.Databases, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:          cache,
		databases:      databases,
		systemPrefixes: defaultSystemPrefixes,
		log:            slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve decides the alias for the current request and records it in the
// RequestContext exactly once. Resolution itself never fails on tenant
// problems; those degrade to the global alias with a warning. It fails only
// when no request context is installed or the context was already resolved
// or torn down.
func (r *Resolver) Resolve(ctx context.Context, identity Identity, signal OverrideSignal) (string, error) {
	rc, ok := FromContext(ctx)
	if !ok {
		return "", ErrNoRequestContext
	}

	alias, viaOverride := r.determine(ctx, rc.meta, identity, signal)
	if err := rc.resolve(alias, viaOverride, identity.Superuser); err != nil {
		return "", err
	}

	r.log.DebugContext(ctx, "request resolved",
		slog.String("alias", alias),
		slog.Bool("via_override", viaOverride),
		slog.String("path", rc.meta.Path))
	return alias, nil
}

func (r *Resolver) determine(ctx context.Context, meta Meta, identity Identity, signal OverrideSignal) (alias string, viaOverride bool) {
	// System paths stay on the global database unless a superuser carries a
	// validated override.
	if r.isSystemPath(meta.Path) {
		if identity.Authenticated && identity.Superuser {
			if alias, ok := r.validatedOverride(ctx, identity, signal); ok {
				return alias, true
			}
		}
		return pg.GlobalAlias, false
	}

	if !identity.Authenticated {
		return pg.GlobalAlias, false
	}

	if identity.Superuser {
		if alias, ok := r.validatedOverride(ctx, identity, signal); ok {
			return alias, true
		}
	} else if signal.Requested != "" {
		// Override signals from regular callers never change resolution;
		// the attempt is recorded for audit.
		r.log.WarnContext(ctx, "unauthorized database override attempt",
			slog.String("user_id", identity.UserID.String()),
			slog.String("requested", signal.Requested),
			slog.String("client_ip", meta.ClientIP))
	}

	if assigned := r.assignedAlias(ctx, identity); assigned != "" {
		return assigned, false
	}
	return pg.GlobalAlias, false
}

// assignedAlias resolves the caller's own tenant assignment, returning ""
// (meaning global) with a warning on any problem.
func (r *Resolver) assignedAlias(ctx context.Context, identity Identity) string {
	if identity.TenantKey == "" {
		r.log.WarnContext(ctx, "authenticated user has no tenant assigned",
			slog.String("user_id", identity.UserID.String()))
		return ""
	}

	t, err := r.cache.GetOrLoad(ctx, identity.TenantKey)
	if err != nil {
		r.log.WarnContext(ctx, "tenant assignment unusable, using global database",
			slog.String("user_id", identity.UserID.String()),
			slog.String("tenant_key", identity.TenantKey),
			slog.Any("error", err))
		return ""
	}

	if !r.databases.Has(t.DatabaseAlias) {
		r.log.ErrorContext(ctx, "tenant alias not present in databases table",
			slog.String("tenant", t.Name),
			slog.String("tenant_alias", t.DatabaseAlias))
		return ""
	}
	return t.DatabaseAlias
}

// validatedOverride applies the superuser override protocol: a requested
// key is accepted only when it names a known, active tenant backed by a
// configured database, and is then persisted to the store for subsequent
// requests. A stale or invalid stored override is cleared.
func (r *Resolver) validatedOverride(ctx context.Context, identity Identity, signal OverrideSignal) (string, bool) {
	store := signal.store()

	if signal.Requested != "" {
		if alias, ok := r.lookupOverride(ctx, signal.Requested); ok {
			store.Set(ctx, signal.Requested)
			r.log.InfoContext(ctx, "database override set",
				slog.String("user_id", identity.UserID.String()),
				slog.String("tenant_alias", alias))
			return alias, true
		}
		r.log.WarnContext(ctx, "invalid database override rejected",
			slog.String("user_id", identity.UserID.String()),
			slog.String("requested", signal.Requested),
			slog.Any("error", ErrInvalidOverride))
	}

	if stored := store.Get(ctx); stored != "" {
		if alias, ok := r.lookupOverride(ctx, stored); ok {
			return alias, true
		}
		store.Clear(ctx)
	}
	return "", false
}

func (r *Resolver) lookupOverride(ctx context.Context, key string) (string, bool) {
	t, err := r.cache.GetOrLoad(ctx, key)
	if err != nil {
		return "", false
	}
	if !r.databases.Has(t.DatabaseAlias) {
		return "", false
	}
	return t.DatabaseAlias, true
}

func (r *Resolver) isSystemPath(path string) bool {
	for _, prefix := range r.systemPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
