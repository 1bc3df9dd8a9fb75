// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's identity once per request and exposes it to
// downstream handlers. Authenticate never rejects on its own: a request
// without valid credentials simply carries no identity, and the Require*
// guards decide per route whether that is acceptable.
//
// Credentials are read from two carriers:
//   - Authorization: Bearer <token> issued by the external auth provider
//   - the signed session cookie issued by POST /auth/login
//
// When both are present the bearer token wins.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trademart-backend/internal/auth"
	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/services"
)

const (
	ctxKeyIdentity = "identity"
	ctxKeyBearer   = "auth.bearer" // bool: request carried a bearer token
)

// IdentityResolver turns raw request credentials into an Identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, creds services.Credentials) (*domain.Identity, error)
}

// Authenticate resolves the request identity via resolver and stores it in
// the Gin context together with "userID" (read by the logger, the rate
// limiter and the idempotency validator).
//
// Unauthenticated requests continue anonymously. A persistence failure while
// resolving aborts with 503 (transient) or 500.
func Authenticate(resolver IdentityResolver, sessionCookie string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds services.Credentials
		if tok, ok := auth.ExtractBearerToken(c.GetHeader("Authorization")); ok {
			creds.Bearer = tok
			c.Set(ctxKeyBearer, true)
		}
		if v, err := c.Cookie(sessionCookie); err == nil {
			creds.Session = v
		}
		if creds.Bearer == "" && creds.Session == "" {
			c.Next()
			return
		}

		id, err := resolver.Resolve(c.Request.Context(), creds)
		switch {
		case err == nil:
			c.Set(ctxKeyIdentity, id)
			c.Set("userID", id.User.ID)
		case errors.Is(err, services.ErrUnauthenticated):
			LoggerFrom(c).Debug().Err(err).Msg("credentials rejected")
		case errors.Is(err, services.ErrRetryable):
			LoggerFrom(c).Warn().Err(err).Msg("identity resolution unavailable")
			abort(c, http.StatusServiceUnavailable, CodeRetryable, "identity store temporarily unavailable")
			return
		default:
			LoggerFrom(c).Error().Err(err).Msg("identity resolution failed")
			abort(c, http.StatusInternalServerError, CodeInternal, "identity resolution failed")
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity resolved by Authenticate, or nil.
func IdentityFrom(c *gin.Context) *domain.Identity {
	v, ok := c.Get(ctxKeyIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*domain.Identity)
	return id
}

// HasBearer reports whether the request carried a bearer token.
func HasBearer(c *gin.Context) bool {
	return c.GetBool(ctxKeyBearer)
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) == nil {
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
			return
		}
		c.Next()
	}
}

// RequireVendor admits only identities that resolved to a vendor.
func RequireVendor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := IdentityFrom(c)
		switch {
		case id == nil:
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
			return
		case id.Kind != domain.IdentityVendor || id.Vendor == nil:
			abort(c, http.StatusForbidden, CodeForbidden, "vendor access required")
			return
		}
		c.Next()
	}
}

// RequireEmployeeRole admits only employees holding one of roles.
func RequireEmployeeRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := IdentityFrom(c)
		switch {
		case id == nil:
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
			return
		case !id.HasEmployeeRole(roles...):
			abort(c, http.StatusForbidden, CodeForbidden, "insufficient role")
			return
		}
		c.Next()
	}
}
