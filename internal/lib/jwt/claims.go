// Package jwt implements generation and parsing of the signed tokens used
// for member sessions.
//
// Two Maker instances run side by side: a short-lived access-token maker
// whose tokens travel in the Authorization header, and a long-lived
// refresh-token maker whose tokens live in an httpOnly cookie.
package jwt

import "github.com/golang-jwt/jwt/v5"

// CustomClaims holds the member identity carried inside a token.
type CustomClaims struct {
	UserID               int64 `json:"userId"` // Member identifier
	jwt.RegisteredClaims       // Standard claims (ExpiresAt, IssuedAt, ...)
}
