// Package handlers implements the REST endpoints of the marketplace API.
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into the JSON envelope (including
// conditional responses and idempotent replays). Authentication and role
// checks happen in middleware before any handler runs; handlers read the
// resolved identity with middleware.IdentityFrom.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trademart-backend/internal/config"
	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/http/middleware"
	"github.com/tbourn/go-trademart-backend/internal/services"
	"github.com/tbourn/go-trademart-backend/internal/utils"

	"github.com/shopspring/decimal"
)

//
// Service contracts (context-aware)
//

// LeadService lists purchased and marketplace leads and manages preferences.
type LeadService interface {
	ListPurchasedPage(ctx context.Context, vendorID, status string, page, pageSize int) ([]domain.LeadPurchase, int64, error)
	PurchasedStats(ctx context.Context, vendorID string) (int64, *time.Time, error)
	Marketplace(ctx context.Context, vendorID, query string, limit int) ([]domain.Lead, error)
	UpdateStatus(ctx context.Context, vendorID, leadID, status string) (*domain.LeadPurchase, error)
	Preferences(ctx context.Context, vendorID string) (*domain.VendorPreference, error)
	SavePreferences(ctx context.Context, vendorID string, in services.PreferencesInput) (*domain.VendorPreference, error)
}

// QuotaService resolves purchases against plan quotas.
type QuotaService interface {
	Consume(ctx context.Context, vendorID, leadID string, mode services.Mode, price decimal.Decimal) (*services.PurchaseResult, error)
	Snapshot(ctx context.Context, vendorID string) (domain.QuotaSnapshot, error)
}

// LoginService performs password logins and issues session tokens.
type LoginService interface {
	Login(ctx context.Context, email, password string) (*domain.Identity, string, time.Time, error)
}

// NotificationService lists and acknowledges notifications.
type NotificationService interface {
	ListPage(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]domain.Notification, int64, error)
	Stats(ctx context.Context, userID string) (int64, *time.Time, error)
	MarkRead(ctx context.Context, userID, id string) error
}

// SubscriptionService assigns plans to vendors.
type SubscriptionService interface {
	AssignPlan(ctx context.Context, vendorID, planID string, durationDays int) (*domain.VendorPlanSubscription, error)
}

// IdempotencyStore records completed purchases per (user, lead, key). Get
// returns nil, nil when no live record exists.
type IdempotencyStore interface {
	Get(ctx context.Context, userID, scope, key string) (*domain.Idempotency, error)
	Save(ctx context.Context, userID, scope, key, resourceID string, status int) error
}

//
// Handler wiring
//

// Deps are the collaborators of Handlers. Idempotency may be nil, which
// disables Idempotency-Key recording.
type Deps struct {
	Leads         LeadService
	Quota         QuotaService
	Login         LoginService
	Notifications NotificationService
	Subscriptions SubscriptionService
	Idempotency   IdempotencyStore
	Session       config.SessionConfig
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	leads   LeadService
	quota   QuotaService
	login   LoginService
	notes   NotificationService
	subs    SubscriptionService
	idem    IdempotencyStore
	session config.SessionConfig
}

// New constructs Handlers bound to d.
func New(d Deps) *Handlers {
	return &Handlers{
		leads:   d.Leads,
		quota:   d.Quota,
		login:   d.Login,
		notes:   d.Notifications,
		subs:    d.Subscriptions,
		idem:    d.Idempotency,
		session: d.Session,
	}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// SuccessResponse is the body of operations with nothing else to return.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.BoundedInt(c.Query("page_size"), defaultPageSize, 1, maxPageSize)
	return
}

// notModified sets a weak ETag built from scope and the collection stats,
// and answers 304 when the client already holds it.
func notModified(c *gin.Context, scope string, count int64, maxTS *time.Time) bool {
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	etag := fmt.Sprintf(`W/"%s:%d:%d"`, scope, count, ts)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// currentVendor returns the vendor resolved by middleware.RequireVendor.
func currentVendor(c *gin.Context) *domain.Vendor {
	if id := middleware.IdentityFrom(c); id != nil {
		return id.Vendor
	}
	return nil
}
