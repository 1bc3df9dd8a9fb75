// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key support for unsafe calls such as lead
// purchases. It validates the header, stashes the key for the handler, and
// asks a lookup whether the same (user, scope, key) already completed. The
// scope is the ":id" route parameter (the lead id for purchases), so a key
// reused against a different lead is a fresh request.
//
// On a hit the recorded result is stashed for the handler and the request is
// exempted from rate limiting. Serving the recorded result is left to the
// handler, which must not query the store again once IdempotencyChecked
// reports true.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

// HeaderIdempotencyKey is the request header carrying the idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set to "true" on responses served from a
// recorded result.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey     = "idem.key"
	ctxKeyIdemChecked = "idem.checked"
	ctxKeyIdemRecord  = "idem.record"
	ctxKeyRateBypass  = "rate.bypass"
)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stored by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyChecked reports whether IdempotencyValidator already looked the
// key up, so ReplayedResult is authoritative for this request.
func IdempotencyChecked(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemChecked)
}

// ReplayedResult returns the recorded result found for this request's key.
func ReplayedResult(c *gin.Context) (*domain.Idempotency, bool) {
	v, ok := c.Get(ctxKeyIdemRecord)
	if !ok {
		return nil, false
	}
	rec, _ := v.(*domain.Idempotency)
	return rec, rec != nil
}

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyLookup returns the still-valid result recorded for
// (userID, scope, key) at now, or nil on a miss.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (*domain.Idempotency, error)

// IdempotencyValidator validates the Idempotency-Key header when present.
// An invalid key is rejected with 400 bad_idempotency_key. Anonymous requests
// keep the key but are never looked up. A lookup error leaves the request
// unchecked so the handler can retry and surface it.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			abort(c, http.StatusBadRequest, CodeBadIdempotency, "invalid Idempotency-Key")
			return
		}
		c.Set(ctxKeyIdemKey, key)

		uid := userIDFromCtx(c)
		scope := c.Param("id")
		if lookup != nil && uid != "" && scope != "" {
			rec, err := lookup(c.Request.Context(), uid, scope, key, time.Now().UTC())
			if err == nil {
				c.Set(ctxKeyIdemChecked, true)
				if rec != nil {
					c.Set(ctxKeyIdemRecord, rec)
					c.Set(ctxKeyRateBypass, true)
				}
			}
		}
		c.Next()
	}
}

// userIDFromCtx returns the "userID" set by Authenticate, or "".
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
