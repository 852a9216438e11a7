package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when the token signature is valid but the
	// expiry has passed. Expired tokens are permanently rejected; there is
	// no refresh mechanism.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid is returned for bad signatures, malformed payloads,
	// or a missing subject claim.
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenManager issues and verifies stateless HS256 session tokens carrying
// the subject email and an expiry derived from the issue time.
type TokenManager struct {
	Secret []byte
	TTL    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{Secret: []byte(secret), TTL: ttl}
}

// Issue signs a token for the given subject, expiring TTL from now.
func (m *TokenManager) Issue(subject string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.TTL)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Verify validates signature and expiry and returns the subject.
// Verification needs no persisted state, only the shared secret.
func (m *TokenManager) Verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !tkn.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
