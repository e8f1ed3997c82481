package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stockledger/stockledger/internal/platform/httpx"
)

type contextKey string

const tokenContextKey contextKey = "auth.token"

// TokenFromContext returns the authenticated token, if any.
func TokenFromContext(ctx context.Context) *APIToken {
	tok, _ := ctx.Value(tokenContextKey).(*APIToken)
	return tok
}

// Middleware rejects requests without a valid bearer token. A nil service
// disables authentication, which the test runtime relies on.
func Middleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if service == nil {
				next.ServeHTTP(w, r)
				return
			}
			token := bearerToken(r)
			authed, err := service.Authenticate(r.Context(), token)
			if err != nil {
				logger.Warn("rejected api token", slog.String("path", r.URL.Path))
				httpx.Problem(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
				return
			}
			ctx := context.WithValue(r.Context(), tokenContextKey, authed)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
