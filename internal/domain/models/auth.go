package models

import "github.com/golang-jwt/jwt/v5"

// ClerkClaims represents the JWT claims structure issued by Clerk.
// Email and Name are optional session-token template claims; the subject
// claim is the only identifier the backend relies on.
type ClerkClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Name                 string `json:"name"`
	SessionID            string `json:"sid"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *ClerkClaims) GetUserID() string {
	return c.Subject
}
