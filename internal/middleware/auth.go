package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/collegeman/travel-journal/internal/domain"
)

// UserFinder is the lookup the auth middleware needs, defined here in the
// consumer package so tests can inject a fake without a database.
type UserFinder interface {
	GetByToken(ctx context.Context, token uuid.UUID) (domain.User, error)
}

// userContextKey is the private context key holding the authenticated user.
type userContextKey struct{}

// NewAuth returns a middleware that authenticates every request by API token.
// The token is read from the Authorization header ("Bearer <uuid>") or, for
// EventSource clients that cannot set headers, from the "token" query
// parameter. Requests with no valid token get 401 with a JSON error body.
func NewAuth(users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				raw = r.URL.Query().Get("token")
			}

			token, err := uuid.Parse(raw)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			user, err := users.GetByToken(r.Context(), token)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the authenticated user. Exposed so
// handler tests can simulate an authenticated request without the middleware.
func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFrom returns the authenticated user stored by NewAuth, if any.
func UserFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(domain.User)
	return user, ok
}

// bearerToken extracts the credential from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": "missing or invalid API token"},
	})
}
