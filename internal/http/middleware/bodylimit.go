// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file caps request body size. Requests that declare a larger
// Content-Length are refused up front with 413; bodies without a declared
// length are wrapped in http.MaxBytesReader so an oversized stream fails when
// the handler reads it (handlers map *http.MaxBytesError to 413 as well).
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimit returns a middleware that limits request bodies to maxBytes.
// A non-positive maxBytes disables the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abort(c, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
