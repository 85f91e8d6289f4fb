// Package token issues and verifies the stateless bearer credentials used
// by the API. Verification is a pure in-memory check: no session store, no
// database round-trip.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jmadu/bookshelf/internal/domain"
)

var (
	ErrExpired          = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrMalformed        = errors.New("token malformed")
)

// Claims is the minimal identity claim set embedded in a token.
type Claims struct {
	UserID int64
	Email  string
	Role   domain.Role
}

type jwtClaims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens with a process-wide HS256 secret.
// The secret is injected at construction so tests can run with distinct keys.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// New creates a Codec. ttl is the fixed validity window from issuance.
func New(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl}
}

// Issue signs a token carrying the user's id, email and role. Nothing else
// from the user record, in particular no credential material, is embedded.
func (c *Codec) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns the embedded
// claims. Failures are distinguished so callers can log the cause, even
// though the HTTP boundary collapses them all to 401.
func (c *Codec) Verify(raw string) (Claims, error) {
	var claims jwtClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSignature
		default:
			return Claims{}, ErrMalformed
		}
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	if !claims.Role.Valid() {
		return Claims{}, ErrMalformed
	}

	return Claims{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}
