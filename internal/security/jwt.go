package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by a signed session token.
type SessionClaims struct {
	Staff     bool `json:"staff"`
	Verified  bool `json:"verified"`
	jwt.RegisteredClaims
}

// SessionManager signs and parses the session tokens handed out after a
// successful login or email verification.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewSessionManager(secret, issuer string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL exposes the configured session lifetime for cookie max-age.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Sign issues a session token for the account.
func (m *SessionManager) Sign(accountID uint, staff, verified bool) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Staff:    staff,
		Verified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatUint(uint64(accountID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates a session token and returns its claims.
func (m *SessionManager) Parse(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// AccountID extracts the numeric subject from the claims.
func (c *SessionClaims) AccountID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse session subject: %w", err)
	}
	return uint(id), nil
}
