package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the per-request correlation ID.
const RequestIDHeader = "X-Request-Id"

// RequestID echoes the caller's request ID or generates one, so log lines
// and Sentry events can be correlated with individual API calls.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
