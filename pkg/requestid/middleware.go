package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// Header is the canonical correlation header name.
const Header = "X-Request-ID"

const maxIDLength = 128

// Client-supplied IDs are reused only when they are plain token characters,
// so a hostile header cannot smuggle control characters into logs.
var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Middleware attaches a correlation ID to every request. A well-formed
// X-Request-ID supplied by the client is reused; anything missing, oversized
// or malformed is replaced with a fresh UUID. The chosen ID is stored in the
// request context and echoed back in the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !acceptable(id) {
			id = uuid.New().String()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}

func acceptable(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
