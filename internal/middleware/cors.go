package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows browser frontends (the home-automation dashboard in
// particular) to read the API from another origin. The API is read-only, so
// a permissive GET-only policy is enough.
func CORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(next)
}
