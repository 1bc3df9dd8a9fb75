// Package auth verifies credentials: bearer tokens issued by the external
// auth provider (HS256 shared secret or asymmetric keys from a JWKS
// endpoint), locally issued session tokens, CSRF tokens and bcrypt password
// hashes. It holds no per-request state; every call re-verifies.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tbourn/go-trademart-backend/internal/config"
)

var (
	// ErrBearerDisabled is returned when no provider verification method is configured.
	ErrBearerDisabled = errors.New("bearer verification not configured")
	// ErrInvalidToken covers malformed, expired or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// ProviderClaims are the verified provider token details we care about.
type ProviderClaims struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// ProviderVerifier validates bearer tokens from the external auth provider.
type ProviderVerifier struct {
	parser  *jwt.Parser
	keyfunc jwt.Keyfunc
}

// NewProviderVerifier builds a verifier from cfg. A JWKS URL takes
// precedence over a shared secret. With neither configured, the returned
// verifier rejects every token with ErrBearerDisabled.
func NewProviderVerifier(ctx context.Context, cfg config.AuthProviderConfig) (*ProviderVerifier, error) {
	opts := []jwt.ParserOption{jwt.WithLeeway(cfg.Leeway), jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	switch {
	case cfg.JWKSURL != "":
		k, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
		}
		return newJWKSVerifier(k, opts), nil
	case cfg.JWTSecret != "":
		secret := []byte(cfg.JWTSecret)
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
		return &ProviderVerifier{
			parser:  jwt.NewParser(opts...),
			keyfunc: func(*jwt.Token) (any, error) { return secret, nil },
		}, nil
	}
	return &ProviderVerifier{}, nil
}

func newJWKSVerifier(k keyfunc.Keyfunc, opts []jwt.ParserOption) *ProviderVerifier {
	opts = append(opts, jwt.WithValidMethods([]string{
		jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name,
		jwt.SigningMethodES256.Name, jwt.SigningMethodES384.Name,
	}))
	return &ProviderVerifier{parser: jwt.NewParser(opts...), keyfunc: k.Keyfunc}
}

// Enabled reports whether bearer tokens can be accepted at all.
func (v *ProviderVerifier) Enabled() bool { return v != nil && v.parser != nil }

// Verify parses and validates a provider token and extracts its claims.
func (v *ProviderVerifier) Verify(tokenString string) (*ProviderClaims, error) {
	if !v.Enabled() {
		return nil, ErrBearerDisabled
	}
	token, err := v.parser.Parse(tokenString, v.keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims := &ProviderClaims{
		Subject: readString(mapClaims, "sub"),
		Email:   readString(mapClaims, "email"),
		Name:    readString(mapClaims, "name"),
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token missing sub", ErrInvalidToken)
	}
	if claims.Email == "" {
		// Some providers nest profile fields under user_metadata.
		if meta, ok := mapClaims["user_metadata"].(map[string]any); ok {
			if s, ok := meta["email"].(string); ok {
				claims.Email = s
			}
			if s, ok := meta["full_name"].(string); ok && claims.Name == "" {
				claims.Name = s
			}
		}
	}
	return claims, nil
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// ExtractBearerToken returns the token of an "Authorization: Bearer <t>" header.
func ExtractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
