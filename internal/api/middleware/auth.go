package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dom/videotube-backend/internal/api/respond"
	"github.com/dom/videotube-backend/internal/domain"
	"github.com/dom/videotube-backend/internal/service"
)

type contextKey string

const (
	userKey contextKey = "user"

	AccessTokenCookie = "accessToken"
)

// Authenticator resolves the user behind an access token.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

var _ Authenticator = (*service.AuthService)(nil)

// Auth reads the access token from the accessToken cookie, falling back to a
// Bearer Authorization header, and attaches the resolved user to the context.
func Auth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), accessToken(r))
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func accessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the user resolved by Auth, or nil on unguarded routes.
func CurrentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}
