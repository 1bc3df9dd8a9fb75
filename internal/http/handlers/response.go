// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response envelope shared by all endpoints. Every body
// carries a `success` flag; failures add a stable `code`, a human-readable
// `error` and the correlation `request_id`. Successful payloads embed their
// fields next to `success`.
//
// Example error response:
//
//	HTTP/1.1 402 Payment Required
//	{
//	  "success": false,
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "quota_exhausted",
//	  "error": "lead quota exhausted"
//	}
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "quota": { "daily_remaining": 2, ... } }
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trademart-backend/internal/http/middleware"
)

// ErrorResponse is the failure envelope returned by all endpoints.
type ErrorResponse struct {
	// Always false
	Success bool `json:"success" example:"false"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message
	Error string `json:"error" example:"lead not found"`
}

// fail aborts the request with an ErrorResponse. Server errors are logged
// with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		Success:   false,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Error:     msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response. body should carry `success: true`.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// bindJSON decodes the request body into dst, answering 413 for an
// oversized body and 400 for anything else. It reports whether decoding
// succeeded.
func bindJSON(c *gin.Context, dst any) bool { return decodeBody(c, dst, false) }

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted.
func bindOptionalJSON(c *gin.Context, dst any) bool { return decodeBody(c, dst, true) }

func decodeBody(c *gin.Context, dst any, allowEmpty bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
		return false
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
	return false
}
