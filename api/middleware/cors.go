package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/cors"
)

const corsPreflightCache = 5 * time.Minute

// CORS admits the configured shop front ends. The cart cookie needs
// credentials, which browsers refuse alongside a "*" origin, so a wildcard
// list turns credentials off.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Content-Type", "X-Requested-With",
			idempotencyHeader, cartSessionHeader, requestIDHeader,
		},
		ExposedHeaders:   []string{cartSessionHeader, requestIDHeader, replayedHeader},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           int(corsPreflightCache.Seconds()),
	})
}
