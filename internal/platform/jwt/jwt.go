// Package jwt issues and validates HS256 access tokens for the admin API.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer   = "mealgrid"
	audience = "mealgrid-admin"
)

// ErrInvalidToken indicates a token that failed signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the identity attributes embedded in an access token.
type Claims struct {
	IdentityID string
	Email      string
	Role       string
}

// Signer issues and parses HS256-signed access tokens.
type Signer struct {
	secret    []byte
	accessTTL time.Duration
	clock     func() time.Time
}

// NewSigner creates a signer with the given secret and access token lifetime.
func NewSigner(secret []byte, accessTTL time.Duration) *Signer {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &Signer{secret: secret, accessTTL: accessTTL, clock: time.Now}
}

// WithClock overrides the time source, for deterministic tests.
func (s *Signer) WithClock(clock func() time.Time) *Signer {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// SignAccess issues an access token for the given identity.
func (s *Signer) SignAccess(claims Claims) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("signing secret is not configured")
	}
	now := s.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   claims.IdentityID,
		"email": claims.Email,
		"role":  claims.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
		"iss":   issuer,
		"aud":   audience,
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its identity claims.
func (s *Signer) Parse(tokenStr string) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.IdentityID = sub
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if claims.IdentityID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
