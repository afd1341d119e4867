package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/hos-market/storefront-api/pkg/config"
)

// CORS returns middleware that applies the storefront's allowed origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-Client-Key", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Client-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
