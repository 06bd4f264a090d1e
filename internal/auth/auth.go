// Package auth verifies the bearer credential presented at connect time.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hireloop/sessiongate/internal/domain"
)

// ErrInvalidToken is the only error surfaced to clients. The reason a
// credential failed (malformed, expired, bad signature) is deliberately
// not distinguished.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256-signed access tokens against a
// pre-shared secret. Verification is pure CPU work, no I/O.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Authenticate runs once per physical connection, before any message
// is processed. Any verification failure rejects the connection.
func (a *Authenticator) Authenticate(credential string) (domain.Identity, error) {
	if credential == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{
		ID:   domain.UserID(claims.UserID),
		Role: domain.Role(claims.Role),
	}, nil
}

// Issue signs an access token for the given identity. The CRUD surface
// is the production issuer; this exists for tooling and tests.
func (a *Authenticator) Issue(who domain.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: int64(who.ID),
		Role:   string(who.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(int64(who.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
