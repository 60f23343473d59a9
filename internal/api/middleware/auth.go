package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/api/shared"
	"github.com/revisehq/revision-api/internal/redact"
	"github.com/revisehq/revision-api/internal/service/auth"
)

// AuthMiddleware enforces bearer-token authentication on routes. Tokens are
// issued by an external identity service; this middleware only validates
// them and extracts the student identity.
type AuthMiddleware struct {
	validator auth.TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(validator auth.TokenValidator) *AuthMiddleware {
	if validator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("token validator cannot be nil for AuthMiddleware")
	}
	return &AuthMiddleware{validator: validator}
}

// Authenticate validates JWT tokens from the Authorization header and adds
// the student ID to the request context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.validator.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token not yet valid")
			case errors.Is(err, auth.ErrMissingStudentID),
				errors.Is(err, auth.ErrInvalidToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(
					w,
					r,
					http.StatusInternalServerError,
					"Authentication error",
				)
			}
			return
		}

		ctx := context.WithValue(r.Context(), shared.StudentIDContextKey, claims.StudentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetStudentID extracts the student ID from the request context.
// Returns the student ID and a boolean indicating if it was found.
func GetStudentID(r *http.Request) (uuid.UUID, bool) {
	studentID, ok := r.Context().Value(shared.StudentIDContextKey).(uuid.UUID)
	return studentID, ok
}
