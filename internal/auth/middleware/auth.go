package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/starterkit/backend/internal/apperrors"
	"go.uber.org/zap"
)

type contextKey string

const userIDKey contextKey = "userID"

// SessionCookieName is the cookie carrying the server-side session id
const SessionCookieName = "sessionid"

// AccessTokenValidator is the interface that wraps the ValidateAccessToken method.
type AccessTokenValidator interface {
	// Method ValidateAccessToken validates the token and returns the user id and role it was issued for.
	//
	// If the token is malformed, expired or signed with another key, the error will be returned.
	ValidateAccessToken(token string) (int, string, error)
}

// SessionLookup is the interface that wraps the GetUserID method.
type SessionLookup interface {
	// Method GetUserID returns the id of the user owning the session.
	//
	// If the session does not exist or has expired, apperrors.ErrNotFound will be returned.
	GetUserID(ctx context.Context, sessionID string) (int, error)
}

// AuthMiddleware resolves the requesting user from a bearer token or a session cookie.
// The bearer token is checked first. sessions may be nil when server-side sessions are disabled.
func AuthMiddleware(tokens AccessTokenValidator, sessions SessionLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Expected format: "Bearer <token>". Other schemes are left to the session check.
			if parts := strings.Fields(r.Header.Get("Authorization")); len(parts) > 0 && strings.EqualFold(parts[0], "bearer") {
				if len(parts) != 2 {
					writeError(w, apperrors.ErrInvalidToken)
					return
				}

				userID, _, err := tokens.ValidateAccessToken(parts[1])
				if err != nil {
					logger.Debug("rejected access token", zap.Error(err))
					writeError(w, apperrors.ErrInvalidToken)
					return
				}

				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
				return
			}

			if sessions != nil {
				if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
					userID, err := sessions.GetUserID(r.Context(), cookie.Value)
					if err != nil {
						if errors.Is(err, apperrors.ErrNotFound) {
							writeError(w, apperrors.ErrInvalidToken)
							return
						}
						logger.Error("failed to look up session", zap.Error(err))
						writeError(w, apperrors.ErrInternal)
						return
					}

					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
					return
				}
			}

			writeError(w, apperrors.ErrNotAuthenticated)
		})
	}
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}

// WithUserID returns a copy of ctx carrying userID
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func writeError(w http.ResponseWriter, appErr *apperrors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	json.NewEncoder(w).Encode(map[string]string{"message": appErr.Message})
}
