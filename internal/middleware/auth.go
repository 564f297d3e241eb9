package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/templui/accounts/internal/ctxkeys"
	"github.com/templui/accounts/internal/model"
	"github.com/templui/accounts/internal/render"
	"github.com/templui/accounts/internal/service"
)

// Authenticator resolves a bearer token to the account that owns it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// RequireAuth rejects requests without a live "Authorization: Bearer <token>"
// session and puts the account into the request context otherwise.
func RequireAuth(auth Authenticator) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.Error(w, r, service.ErrNotAuthorized)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				render.Error(w, r, err)
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = ""

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}
