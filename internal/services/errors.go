// Package services defines the business logic for lead purchases, vendor
// leads, identity resolution, subscriptions and notifications.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import (
	"errors"

	"github.com/tbourn/go-trademart-backend/internal/repo"
)

// Input validation errors.
var (
	// ErrInvalidMode is returned when a purchase mode is not one of
	// AUTO, USE_WEEKLY, BUY_EXTRA or PAID.
	ErrInvalidMode = errors.New("invalid purchase mode")

	// ErrInvalidPrice is returned for a negative purchase price.
	ErrInvalidPrice = errors.New("purchase price must not be negative")

	// ErrInvalidStatus is returned for an unknown lead status.
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrInvalidPreferences wraps validator failures on vendor preferences.
	ErrInvalidPreferences = errors.New("invalid preferences")
)

// Lookup and state errors.
var (
	// ErrVendorNotFound indicates that the vendor does not exist.
	ErrVendorNotFound = errors.New("vendor not found")

	// ErrLeadNotFound indicates that the lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrLeadUnavailable is returned when the lead is closed, assigned to
	// another vendor, or already claimed by the maximum number of vendors.
	ErrLeadUnavailable = errors.New("lead unavailable")

	// ErrPurchaseNotFound indicates the vendor has not purchased the lead.
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrInvalidTransition is returned when a lead status cannot move to
	// the requested value.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPlanNotFound indicates that the plan does not exist or is inactive.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrNotificationNotFound indicates that the notification does not exist
	// or belongs to another user.
	ErrNotificationNotFound = errors.New("notification not found")
)

// Concurrency and persistence errors.
var (
	// ErrQuotaContention is returned when the quota row kept changing under
	// the resolver for every allowed retry.
	ErrQuotaContention = errors.New("quota contention")

	// ErrRetryable marks transient persistence failures.
	ErrRetryable = errors.New("temporarily unavailable")

	// ErrFeatureUnavailable is returned when the connected schema lacks a
	// table the operation needs.
	ErrFeatureUnavailable = errors.New("feature unavailable")
)

// Authentication errors.
var (
	// ErrUnauthenticated is returned when no valid credential was presented.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidCredentials is returned by Login for an unknown e-mail or a
	// wrong password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// persistErr maps a raw persistence error onto ErrRetryable or
// ErrFeatureUnavailable, keeping the original reachable via errors.Is.
func persistErr(err error) error {
	if err == nil {
		return nil
	}
	c := repo.Classify(err)
	switch {
	case errors.Is(c, repo.ErrTransient):
		return errors.Join(ErrRetryable, c)
	case errors.Is(c, repo.ErrMissingRelation):
		return errors.Join(ErrFeatureUnavailable, c)
	}
	return c
}
