package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dias221467/Activity_Notifier/pkg/httpclient"
	jwtutil "github.com/Dias221467/Activity_Notifier/pkg/jwt"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
)

type contextKey string

// UserContextKey holds the *jwt.Claims of the authenticated caller.
const UserContextKey contextKey = "user"

// AuthMiddleware validates the bearer token. The token is also kept on the
// context so outgoing gateway calls act on behalf of the caller.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if authHeader == "" || !found || tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtutil.ValidateToken(tokenString, secret)
			if err != nil {
				logger.Log.WithError(err).Warn("Rejected token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			ctx = httpclient.WithToken(ctx, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the caller claims or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(UserContextKey).(*jwtutil.Claims)
	return claims
}
