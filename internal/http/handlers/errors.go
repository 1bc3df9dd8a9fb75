// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them instead of
// matching messages. Generic codes mirror HTTP status semantics, domain codes
// name business outcomes that the status alone cannot convey (for example a
// 402 is always quota_exhausted).
//
// Example response:
//
//	{
//	  "success": false,
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "lead_unavailable",
//	  "error": "lead unavailable"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trademart-backend/internal/http/middleware"
	"github.com/tbourn/go-trademart-backend/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = middleware.CodeUnauthorized
	ErrCodeForbidden        = middleware.CodeForbidden
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = middleware.CodeRateLimited
	ErrCodeInternal         = middleware.CodeInternal
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodePayloadTooLarge  = middleware.CodePayloadTooLarge

	// Domain-specific:
	ErrCodeQuotaExhausted     = "quota_exhausted"
	ErrCodeLeadUnavailable    = "lead_unavailable"
	ErrCodeInvalidTransition  = "invalid_transition"
	ErrCodeQuotaContention    = "quota_contention"
	ErrCodeRetryable          = middleware.CodeRetryable
	ErrCodeFeatureUnavailable = "feature_unavailable"
	ErrCodeInvalidCredentials = "invalid_credentials"
)

// serviceError maps a service error to status, code and a client message.
// Persistence failures keep the underlying message, matching what operators
// see in logs.
func serviceError(err error) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrInvalidMode),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPreferences):
		return http.StatusBadRequest, ErrCodeBadRequest, err.Error()
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password"
	case errors.Is(err, services.ErrVendorNotFound),
		errors.Is(err, services.ErrLeadNotFound),
		errors.Is(err, services.ErrPurchaseNotFound),
		errors.Is(err, services.ErrPlanNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		return http.StatusNotFound, ErrCodeNotFound, err.Error()
	case errors.Is(err, services.ErrLeadUnavailable):
		return http.StatusNotFound, ErrCodeLeadUnavailable, err.Error()
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict, ErrCodeInvalidTransition, err.Error()
	case errors.Is(err, services.ErrQuotaContention):
		return http.StatusConflict, ErrCodeQuotaContention, "quota is busy, retry the purchase"
	case errors.Is(err, services.ErrFeatureUnavailable):
		return http.StatusServiceUnavailable, ErrCodeFeatureUnavailable, err.Error()
	case errors.Is(err, services.ErrRetryable):
		return http.StatusServiceUnavailable, ErrCodeRetryable, err.Error()
	}
	return http.StatusInternalServerError, ErrCodeInternal, err.Error()
}

// failErr writes the mapped response for err.
func failErr(c *gin.Context, err error) {
	status, code, msg := serviceError(err)
	fail(c, status, code, msg)
}
