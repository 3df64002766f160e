package token

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when a token cannot be decoded as a JWT.
var ErrMalformed = errors.New("malformed access token")

// Claims is the subset of provider access-token claims the client reads.
type Claims struct {
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	IsAnonymous bool   `json:"is_anonymous,omitempty"`
	jwt.RegisteredClaims
}

// ExpiresAtUnix returns the exp claim in Unix seconds, or 0 when absent.
func (c *Claims) ExpiresAtUnix() int64 {
	if c == nil || c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}

// ParseClaims decodes accessToken without verifying its signature.
//
// The signing key belongs to the provider; the result is informational only and
// must never be used for authorization decisions.
func ParseClaims(accessToken string) (*Claims, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" || strings.Count(accessToken, ".") != 2 {
		return nil, ErrMalformed
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return claims, nil
}
