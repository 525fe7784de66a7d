package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/gameaccounts/internal/dependencies/clock"
)

const cookieIssuer = "gameaccounts"

// CookieSigner wraps session handles in HS256 tokens for browser cookies,
// so a cookie value cannot be fabricated without the signing secret.
type CookieSigner struct {
	secret []byte
	clock  clock.Clock
}

// NewCookieSigner creates a signer. The secret must be at least 32 bytes.
func NewCookieSigner(secret []byte, clock clock.Clock) (*CookieSigner, error) {
	if len(secret) < 32 {
		return nil, errors.New("session signing secret must be at least 32 bytes")
	}
	return &CookieSigner{secret: secret, clock: clock}, nil
}

// Sign returns the cookie value for a session
func (c *CookieSigner) Sign(s *Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        s.Handle,
		Issuer:    cookieIssuer,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return token, nil
}

// Parse verifies a cookie value and returns the session handle inside it
func (c *CookieSigner) Parse(value string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock.Now),
	)
	if err != nil || claims.ID == "" {
		return "", ErrUnauthenticated
	}
	return claims.ID, nil
}
