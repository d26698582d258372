package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/stylesync/service/internal/auth"
	"github.com/stylesync/service/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// UserIDKey is the context key for the authenticated user's subject id.
const UserIDKey contextKey = "userID"

// UserEmailKey is the context key for the authenticated user's email.
const UserEmailKey contextKey = "userEmail"

// TokenVerifier validates a bearer credential and returns the verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, credential string) (*auth.Claims, error)
}

// RequireAuth returns middleware that validates a Firebase bearer ID token
// and injects the verified subject into the request context. Status mapping:
// 401 when no token was presented, 403 when the token fails verification,
// 500 when the verifier itself is misconfigured. A verifier failure never
// falls back to a substitute identity.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "No token provided.")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				response.Unauthorized(w, "No token provided.")
				return
			}

			claims, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				if errors.Is(err, auth.ErrVerifierUnavailable) {
					log.Error().Err(err).Msg("token verifier unavailable")
					response.InternalError(w, "Authentication service is not configured.")
					return
				}
				log.Warn().Err(err).Msg("token verification failed")
				response.Forbidden(w, "Invalid or expired token.")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.SubjectID)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the authenticated subject id from a request context.
func UserID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserIDKey).(string)
	return uid, ok && uid != ""
}
