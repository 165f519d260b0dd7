// Package requestid correlates every HTTP request with a short opaque ID.
//
// Middleware reuses a well-formed client-supplied X-Request-ID header or
// generates a UUID, stores the ID in the request context, and echoes it back
// in the response. FromContext reads the ID anywhere downstream, and
// LoggerExtractor feeds it into the structured logger so every log record
// emitted while serving a request carries the same request_id attribute.
//
// Mount it outermost so the tenant-resolution middleware and handlers all see
// the same ID:
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//	r.Use(tenant.Middleware(identities, resolver))
//
// The package never returns errors; malformed client IDs are silently
// replaced.
package requestid
