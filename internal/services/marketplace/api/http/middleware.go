package http

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/mealgrid/mealgrid/internal/platform/errors"
	platformjwt "github.com/mealgrid/mealgrid/internal/platform/jwt"
)

type contextKey int

const claimsContextKey contextKey = iota

// ClaimsFromContext returns the verified token claims for the request.
func ClaimsFromContext(ctx context.Context) (platformjwt.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(platformjwt.Claims)
	return claims, ok
}

// RequireRole verifies the bearer token and restricts access to the given roles.
func RequireRole(signer *platformjwt.Signer, allowed ...string) func(http.Handler) http.Handler {
	set := map[string]struct{}{}
	for _, role := range allowed {
		set[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeError(w, apperrors.New(apperrors.CodeAuthUnauthorized, "missing bearer token"))
				return
			}

			claims, err := signer.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, apperrors.New(apperrors.CodeAuthUnauthorized, "invalid bearer token"))
				return
			}

			if _, ok := set[claims.Role]; !ok {
				writeError(w, apperrors.New(apperrors.CodeAuthForbidden, "insufficient role"))
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
