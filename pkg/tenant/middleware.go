package tenant

import (
	"net"
	"net/http"
	"strings"

	"github.com/schoolara/schoolara/pkg/requestid"
)

// Middleware brackets every request with Begin/End and runs tenant
// resolution between them, so that by the time a handler executes, the
// request context carries its routing decision. End runs in a defer and
// therefore survives handler panics; no request leaves its resolution
// behind for the next one.
func Middleware(identities IdentityProvider, resolver *Resolver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		overrideParam: "db",
		errorHandler:  defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			meta := Meta{
				ClientIP:  clientIP(r),
				Path:      r.URL.Path,
				RequestID: requestid.FromContext(r.Context()),
			}
			if cfg.sessionID != nil {
				meta.SessionID = cfg.sessionID(r)
			}

			ctx, rc := Begin(r.Context(), meta)
			defer End(rc)

			signal := OverrideSignal{
				Requested: r.URL.Query().Get(cfg.overrideParam),
			}
			if cfg.overrideStore != nil {
				signal.Store = cfg.overrideStore(r)
			}

			if _, err := resolver.Resolve(ctx, identities.Identify(r), signal); err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant ensures the request resolved to a tenant database before
// the handler runs, for routes that are meaningless against global data.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := FromContext(r.Context())
			if !ok {
				errorHandler(w, r, ErrNoRequestContext)
				return
			}
			if _, ok := rc.TenantAlias(); !ok {
				errorHandler(w, r, ErrTenantNotFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
