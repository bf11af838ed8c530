package httputil

import (
	"context"
	"net/http"

	"legacybook/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
	claimsKey contextKey = "claims"
)

// WithUser adds the verified user ID and claims to the request context
func WithUser(r *http.Request, claims *models.ClerkClaims) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, claims.GetUserID())
	ctx = context.WithValue(ctx, claimsKey, claims)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetClaims retrieves the verified claims from context, nil if not found
func GetClaims(r *http.Request) *models.ClerkClaims {
	claims, _ := r.Context().Value(claimsKey).(*models.ClerkClaims)
	return claims
}
