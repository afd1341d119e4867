package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hos-market/storefront-api/pkg/logger"
)

type contextKey string

const ctxClientKey contextKey = "client_key"

// ClientKeyHeader carries the browser-held key that scopes cart and
// checkout-plan state to one storefront client.
const ClientKeyHeader = "X-Client-Key"

func ClientKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxClientKey).(string); ok {
		return v
	}
	return ""
}

// WithClientKey injects the client key into the context.
func WithClientKey(ctx context.Context, clientKey string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClientKey, clientKey)
}

// ClientKey extracts the client key header into the request context and the
// log entry. A request without one gets a fresh key, echoed back in the
// response header so the browser can persist it.
func ClientKey(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(ClientKeyHeader))
			if key == "" {
				key = uuid.NewString()
			}
			w.Header().Set(ClientKeyHeader, key)

			ctx := WithClientKey(r.Context(), key)
			if logg != nil {
				ctx = logg.WithClientKey(ctx, key)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
