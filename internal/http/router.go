// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, CSRF, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Role checks as route-group middleware, never inside handlers
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/auth"
	"github.com/tbourn/go-trademart-backend/internal/config"
	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/http/handlers"
	"github.com/tbourn/go-trademart-backend/internal/http/middleware"
	"github.com/tbourn/go-trademart-backend/internal/repo"
	"github.com/tbourn/go-trademart-backend/internal/services"

	_ "github.com/tbourn/go-trademart-backend/internal/docs" // swagger spec registration
)

// Deps are the infrastructure handles the router builds services from.
// Provider may be disabled (bearer tokens are then rejected) and Redis may
// be nil (rate limits are then kept per instance).
type Deps struct {
	DB       *gorm.DB
	Caps     repo.Capabilities
	Provider *auth.ProviderVerifier
	Sessions *auth.SessionManager
	Redis    *redis.Client
}

// idempotencyStore adapts the repository free functions to
// handlers.IdempotencyStore.
type idempotencyStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// Get proxies repo.GetIdempotency, reporting a miss as nil, nil.
func (s idempotencyStore) Get(ctx context.Context, userID, scope, key string) (*domain.Idempotency, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, userID, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Save proxies repo.CreateIdempotency. A concurrent duplicate is not an error.
func (s idempotencyStore) Save(ctx context.Context, userID, scope, key, resourceID string, status int) error {
	_, err := repo.CreateIdempotency(ctx, s.db, userID, scope, key, resourceID, status, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// lookup is the middleware.IdempotencyLookup over the same table.
func (s idempotencyStore) lookup(ctx context.Context, userID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), CORS and security
// headers, health and metrics endpoints, and then mounts the versioned API
// under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (413)
//  6. Metrics
//  7. gzip, CORS and security headers
//
// and on the API group:
//  8. Authenticate: bearer or session cookie → identity (anonymous allowed)
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Rate limiter (per user/IP; Redis-backed when configured)
//  11. CSRF on unsafe methods, except login
//  12. Role guards per route group
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key", cfg.Session.CSRFHeader},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compression, CORS, security headers
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(corsMiddleware(cfg))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	identitySvc := &services.IdentityService{DB: d.DB, Provider: d.Provider, Sessions: d.Sessions}
	leadSvc := services.NewLeadService(d.DB, d.Caps)
	quotaSvc := services.NewQuotaService(d.DB, d.Caps)
	if cfg.Quota.PurchaserCap > 0 {
		leadSvc.PurchaserCap = cfg.Quota.PurchaserCap
		quotaSvc.PurchaserCap = cfg.Quota.PurchaserCap
	}
	if cfg.Quota.MaxRetries > 0 {
		quotaSvc.MaxRetries = cfg.Quota.MaxRetries
	}
	idem := idempotencyStore{db: d.DB, ttl: cfg.IdempotencyTTL}

	h := handlers.New(handlers.Deps{
		Leads:         leadSvc,
		Quota:         quotaSvc,
		Login:         identitySvc,
		Notifications: &services.NotificationService{DB: d.DB, Caps: d.Caps},
		Subscriptions: &services.SubscriptionService{DB: d.DB, Caps: d.Caps},
		Idempotency:   idem,
		Session:       cfg.Session,
	})

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.Authenticate(identitySvc, cfg.Session.CookieName))
	api.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.lookup))
	api.Use(rateLimiter(d.Redis, cfg))

	// Login establishes the CSRF cookie, so it cannot require one.
	api.POST("/auth/login", h.Login)

	protected := api.Group("")
	protected.Use(middleware.CSRF(middleware.CSRFOptions{
		CookieName: cfg.Session.CSRFCookie,
		HeaderName: cfg.Session.CSRFHeader,
	}))
	{
		protected.POST("/auth/logout", h.Logout)
		protected.GET("/auth/me", middleware.RequireAuth(), h.Me)

		// Vendor workspace (contact details: never cached)
		vendors := protected.Group("/vendors/me")
		vendors.Use(middleware.RequireVendor(), middleware.SecurityHeaders(middleware.SecurityOptions{NoStore: true}))
		vendors.GET("/leads", h.ListLeads)
		vendors.GET("/marketplace", h.Marketplace)
		vendors.POST("/leads/:id/purchase", h.PurchaseLead)
		vendors.PATCH("/leads/:id/status", h.UpdateLeadStatus)
		vendors.GET("/quota", h.Quota)
		vendors.GET("/preferences", h.GetPreferences)
		vendors.PUT("/preferences", h.PutPreferences)

		// Notifications
		notes := protected.Group("/notifications")
		notes.Use(middleware.RequireAuth())
		notes.GET("", h.ListNotifications)
		notes.POST("/:id/read", h.MarkNotificationRead)

		// Administration
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireEmployeeRole(domain.RoleAdmin, domain.RoleSuperAdmin))
		admin.PUT("/vendors/:id/subscription", h.AssignSubscription)
	}
}

// rateLimiter picks the shared Redis limiter when a client is configured and
// the in-process token bucket otherwise.
func rateLimiter(client *redis.Client, cfg config.Config) gin.HandlerFunc {
	if client != nil {
		return middleware.NewRedisRateLimiter(client, cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).Handler()
	}
	return middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).Handler()
}

// corsMiddleware allows any origin without credentials when no allowlist is
// configured, and echoes allowlisted origins with credentials otherwise.
func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		cfg.Session.CSRFHeader, middleware.HeaderIdempotencyKey, "If-None-Match",
	}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After", middleware.HeaderIdempotencyReplayed}
	methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		handler := cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		})
		// Force ACAO: * even for requests without an Origin header.
		return func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			handler(c)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     methods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    exposeHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
