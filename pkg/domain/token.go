package domain

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the backend's OAuth2 token response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Claims are the access-token fields the client displays.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token had expired at now. Tokens without an
// expiry never expire.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims decodes the claims of a JWT access token without verifying its
// signature; the client cannot verify and only shows them.
func ParseClaims(raw string) (Claims, error) {
	tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("domain.ParseClaims: %w", err)
	}
	var c Claims
	if c.Subject, err = tok.Claims.GetSubject(); err != nil {
		return Claims{}, fmt.Errorf("domain.ParseClaims: %w", err)
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("domain.ParseClaims: %w", err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
