package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/axchisan/AxIA/internal/service/auth"
	"github.com/axchisan/AxIA/pkg/utils"
)

type contextKey string

const userKey contextKey = "user"

// RequireAuth verifies the bearer token and stores the authenticated
// username in the request context. No relay work happens on a rejected token.
func RequireAuth(authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			username, err := authSvc.VerifyToken(token)
			if err != nil {
				message := "invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					message = "token expired"
				}
				utils.RespondError(w, http.StatusUnauthorized, message)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the username stored by RequireAuth.
func UserFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(userKey).(string)
	return username, ok && username != ""
}
