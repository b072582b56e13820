// Package jwtx provides minting and verification of the HS256 bearer tokens
// used to authenticate operators against the admin API. Tokens carry a
// space-delimited "scope" claim in the OAuth2 style.
package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrExpiredToken = errors.New("jwtx: token expired")
)

// Claims is the verified content of an admin token.
type Claims struct {
	Subject string
	Scopes  []string
}

// Verifier validates a raw bearer token and returns its claims.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

// HS256 signs and verifies tokens with a single shared secret. The secret is
// operator-provisioned configuration; there is no key rotation here.
type HS256 struct {
	Secret []byte
	Issuer string
}

type tokenClaims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Mint creates a signed token for the given subject and scopes.
func (h HS256) Mint(subject string, scopes []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Scope: strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    h.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a raw token string.
func (h HS256) Verify(raw string) (Claims, error) {
	var claims tokenClaims

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return h.Secret, nil
	},
		jwt.WithIssuer(h.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return Claims{
		Subject: claims.Subject,
		Scopes:  strings.Fields(claims.Scope),
	}, nil
}
