package middleware

import (
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
)

// TokenParser validates a bearer token.
type TokenParser interface {
	Parse(raw string) (auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token with 401 and
// stores the caller's Principal in the request context.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := WithPrincipal(r.Context(), Principal{
				UserID: claims.Subject,
				Email:  claims.Email,
				Name:   claims.Name,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after Authenticate. Callers with another role get 403.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if p.Role != role {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
