package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

// NewCSRFToken returns a random URL-safe token for the double-submit cookie.
func NewCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CSRFMatches reports whether the header echoes the cookie. Empty values never match.
func CSRFMatches(cookie, header string) bool {
	if cookie == "" || header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) == 1
}
