package tenant

import (
	"errors"
	"net/http"
)

// ErrorHandler handles errors raised while installing the request context.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	skipPaths     []string
	overrideParam string
	overrideStore func(r *http.Request) OverrideStore
	sessionID     func(r *http.Request) string
	errorHandler  ErrorHandler
}

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*middlewareConfig)

// WithSkipPaths sets path prefixes that bypass resolution entirely, e.g.
// health and metrics endpoints that touch no tenant data.
func WithSkipPaths(paths []string) MiddlewareOption {
	return func(c *middlewareConfig) { c.skipPaths = paths }
}

// WithOverrideParam sets the query parameter carrying a superuser database
// override. Defaults to "db".
func WithOverrideParam(name string) MiddlewareOption {
	return func(c *middlewareConfig) {
		if name != "" {
			c.overrideParam = name
		}
	}
}

// WithOverrideStore wires the session-backed store that persists accepted
// overrides across requests.
func WithOverrideStore(store func(r *http.Request) OverrideStore) MiddlewareOption {
	return func(c *middlewareConfig) { c.overrideStore = store }
}

// WithSessionID sets the function that extracts the session identifier for
// request metadata.
func WithSessionID(fn func(r *http.Request) string) MiddlewareOption {
	return func(c *middlewareConfig) { c.sessionID = fn }
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	case errors.Is(err, ErrInactiveTenant):
		http.Error(w, "Tenant subscription is inactive", http.StatusForbidden)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
