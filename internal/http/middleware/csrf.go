// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements double-submit CSRF protection for cookie sessions.
// The login handler sets a readable CSRF cookie; browser clients echo its
// value in a request header on every unsafe call. Requests authenticated
// with a bearer token are exempt, since browsers never attach those
// automatically.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trademart-backend/internal/auth"
)

// CSRFOptions names the cookie and header compared by CSRF.
type CSRFOptions struct {
	CookieName string // e.g. "tm_csrf"
	HeaderName string // e.g. "X-CSRF-Token"
}

// CSRF enforces cookie/header equality on POST, PUT, PATCH and DELETE.
// Mismatches are rejected with 403 csrf_failed.
func CSRF(opts CSRFOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if safeMethod(c.Request.Method) || HasBearer(c) {
			c.Next()
			return
		}
		cookie, _ := c.Cookie(opts.CookieName)
		if !auth.CSRFMatches(cookie, c.GetHeader(opts.HeaderName)) {
			abort(c, http.StatusForbidden, CodeCSRFFailed, "missing or invalid CSRF token")
			return
		}
		c.Next()
	}
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
