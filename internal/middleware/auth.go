package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/benvon/careerontrack/internal/database"
	logpkg "github.com/benvon/careerontrack/internal/logger"
	"github.com/benvon/careerontrack/internal/models"
	"github.com/benvon/careerontrack/internal/request"
	"github.com/benvon/careerontrack/internal/services/auth"
	"go.uber.org/zap"
)

// TokenVerifier checks a bearer token and returns its claims
type TokenVerifier interface {
	Verify(tokenString string) (*models.JWTClaims, error)
}

// UserLookup loads the account a token belongs to
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Auth creates authentication middleware that validates bearer tokens and
// attaches the token's user to the request context
func Auth(tokens TokenVerifier, users UserLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logpkg.OrNop(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondErrorJSON(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Missing Authorization header")
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
				respondErrorJSON(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Invalid Authorization header format")
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(tokenString))
			if err != nil {
				logger.Debug("token_rejected", zap.String("error", logpkg.SanitizeError(err)))
				respondErrorJSON(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Invalid or expired token")
				return
			}

			userID, err := auth.UserID(claims)
			if err != nil {
				respondErrorJSON(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					// Account removed after the token was issued
					respondErrorJSON(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Invalid or expired token")
					return
				}
				logger.Error("auth_user_lookup_failed",
					zap.Int64("user_id", userID),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondErrorJSON(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load user")
				return
			}

			logger.Debug("token_accepted",
				zap.Int64("user_id", userID),
				zap.Time("expires_at", claims.ExpiresAt()),
			)
			next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
		})
	}
}
