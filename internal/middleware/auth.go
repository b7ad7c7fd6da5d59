package middleware

import (
	"context"
	"net/http"

	"github.com/ayush/sports-events-hub/internal/auth"
	"github.com/ayush/sports-events-hub/internal/httpx"
	"github.com/ayush/sports-events-hub/internal/models"
)

type ctxKey struct{}

// SessionValidator is satisfied by *auth.Service.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (models.Profile, error)
}

// RequireAuth is middleware that validates the session cookie and
// injects the user's profile into the request context.
func RequireAuth(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
				token = cookie.Value
			}

			user, err := sessions.ValidateSession(r.Context(), token)
			if err != nil {
				httpx.Fail(w, http.StatusUnauthorized, auth.SessionMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user models.Profile) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext returns the authenticated user set by RequireAuth.
func UserFromContext(ctx context.Context) (models.Profile, bool) {
	user, ok := ctx.Value(ctxKey{}).(models.Profile)
	return user, ok
}
