// Package middleware holds the HTTP middleware for the API: request tracing
// and bearer-token authentication.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/api/shared"
	"github.com/flashdeck/flashdeck-api/internal/redact"
	"github.com/flashdeck/flashdeck-api/internal/service/auth"
)

// AuthMiddleware validates bearer tokens and injects the owner identity into
// the request context.
type AuthMiddleware struct {
	tokens auth.TokenService
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(tokens auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate rejects requests without a valid Bearer token and stores the
// token's owner ID in the context for handlers downstream.
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

		claims, err := m.tokens.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := context.WithValue(r.Context(), shared.OwnerIDContextKey, claims.OwnerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwnerID extracts the authenticated owner ID from the request context.
func GetOwnerID(r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := r.Context().Value(shared.OwnerIDContextKey).(uuid.UUID)
	return ownerID, ok
}
