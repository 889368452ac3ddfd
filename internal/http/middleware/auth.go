package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/http/response"
	"github.com/atlastrek/tours/pkg/logger"
)

// Authenticator resolves a bearer token to a user. Satisfied by
// service.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type ctxKey string

const ctxUser ctxKey = "current_user"

// CurrentUser returns the identity attached by RequireAuth or OptionalAuth,
// or nil for an anonymous request.
func CurrentUser(r *http.Request) *domain.User {
	u, _ := r.Context().Value(ctxUser).(*domain.User)
	return u
}

func extractToken(r *http.Request, cookieName string) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth gates a route on a verified identity: token present and valid,
// user still exists, token not stale after a password change.
func RequireAuth(authn Authenticator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, cookieName)
			if token == "" {
				response.Error(w, r, domain.ErrUnauthenticated)
				return
			}

			user, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				response.Error(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUser, user)
			ctx = context.WithValue(ctx, logger.UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an identity when a valid token is present and lets
// the request through anonymously otherwise. Verification failures are
// deliberately swallowed.
func OptionalAuth(authn Authenticator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUser, user)
			ctx = context.WithValue(ctx, logger.UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles admits only identities whose role is in the allowed set.
// Must run after RequireAuth; it does no token work of its own.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil {
				response.Error(w, r, domain.ErrUnauthenticated)
				return
			}
			if !allowed[user.Role] {
				response.Error(w, r, domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
