package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionIssuer = "trademart"

// SessionClaims is the payload of a locally issued session token.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256-signed session tokens carried in
// the HttpOnly session cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

// NewSessionManager returns a manager signing with secret. ttl bounds the exp claim.
func NewSessionManager(secret string, ttl time.Duration) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be > 0")
	}
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
			jwt.WithIssuer(sessionIssuer),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}, nil
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue signs a session token for userID.
func (m *SessionManager) Issue(userID, email string) (string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)
	claims := SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Verify validates a session token and returns its claims.
func (m *SessionManager) Verify(token string) (*SessionClaims, error) {
	var claims SessionClaims
	t, err := m.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return m.secret, nil })
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
