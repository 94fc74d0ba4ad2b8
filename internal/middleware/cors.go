// Package middleware provides the HTTP middleware for the ShareIt booking API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// ActorHeader carries the acting user's ID on every booking request.
const ActorHeader = "X-Sharer-User-Id"

// NewCORSHandler returns a middleware that applies CORS headers based on allowedOrigins.
// Each entry in allowedOrigins must be a full origin (scheme + host, no trailing slash).
// Browsers must be allowed to send ActorHeader, otherwise every preflight fails.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", ActorHeader},
		ExposedHeaders: []string{"X-Request-Id"},
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
