package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/plateful/restaurant-ops/internal/auth"
	"github.com/plateful/restaurant-ops/internal/models"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionFrom extracts the authenticated session from a request context.
func SessionFrom(ctx context.Context) (*auth.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*auth.Session)
	return session, ok
}

// Authenticator validates the bearer token and attaches the resulting
// session to the request context. A 401 here tells the console to drop
// its cached token and send the user back to the login page.
func Authenticator(svc *auth.Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "Unauthorized: bearer token required", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || token == "" {
				http.Error(w, "Unauthorized: malformed authorization header", http.StatusUnauthorized)
				return
			}

			session, err := svc.ParseToken(token)
			if err != nil {
				http.Error(w, "Unauthorized: invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose session does not grant at least the
// given role. Must run after Authenticator.
func RequireRole(role models.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFrom(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: no session", http.StatusUnauthorized)
				return
			}
			if !session.HasRole(role) {
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
