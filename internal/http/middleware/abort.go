// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the error envelope written by middleware that rejects a
// request before it reaches a handler. The shape matches handlers.ErrorResponse
// so clients see one format regardless of which layer refused the call.
package middleware

import (
	"github.com/gin-gonic/gin"
)

// Codes emitted by middleware. Handlers use the same strings.
const (
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeCSRFFailed      = "csrf_failed"
	CodeRateLimited     = "too_many_requests"
	CodePayloadTooLarge = "payload_too_large"
	CodeBadIdempotency  = "bad_idempotency_key"
	CodeInternal        = "internal_error"
	CodeRetryable       = "retryable"
)

// abort stops the chain with {success:false, code, error, request_id}.
func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"error":      msg,
	})
}
