package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/SagarCoder007/modern-banking-system/internal/auth"
	"github.com/SagarCoder007/modern-banking-system/internal/httputil"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// UserFrom returns the authenticated user placed in the context by
// Authenticated.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// TokenFrom returns the access token record for the current request.
func TokenFrom(ctx context.Context) (*models.AccessToken, bool) {
	t, ok := ctx.Value(tokenKey).(*models.AccessToken)
	return t, ok
}

// Authenticated resolves the Bearer token through the token authority
// and stores the user and token on the request context. Every failure
// is the same 401; callers learn nothing about why a token was bad.
func Authenticated(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.WriteError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			user, token, err := svc.Verify(r.Context(), parts[1])
			if err != nil {
				httputil.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole guards a subtree for one role. Runs after Authenticated.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				httputil.WriteError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}
			if user.Role != role {
				httputil.WriteError(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
