// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database connection, sessions, token
// verification, lead quota tuning, rate limiting, and observability.
//
// Load is called once at process start; the resulting Config is passed by
// value to the components that need it. Nothing below re-reads the
// environment at request time.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-trademart-backend/internal/sysutil"
)

// devSessionSecret signs session cookies when SESSION_SECRET is unset outside
// release mode. It is never accepted in release mode.
const devSessionSecret = "dev-only-session-secret-change-me"

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "trademart-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DatabaseConfig selects the relational backend.
type DatabaseConfig struct {
	Driver      string // DB_DRIVER: sqlite|postgres
	Path        string // DB_PATH (sqlite)
	URL         string // DATABASE_URL (postgres DSN)
	AutoMigrate bool   // DB_AUTO_MIGRATE
}

// SessionConfig controls the locally issued session and CSRF cookies.
type SessionConfig struct {
	Secret     string        // SESSION_SECRET (HS256 key)
	TTL        time.Duration // SESSION_TTL
	CookieName string        // SESSION_COOKIE_NAME
	CSRFCookie string        // CSRF_COOKIE_NAME
	CSRFHeader string        // CSRF_HEADER_NAME
	Secure     bool          // COOKIE_SECURE
	Domain     string        // COOKIE_DOMAIN
}

// AuthProviderConfig describes how bearer tokens from the external auth
// provider are verified. Either JWTSecret (HS256) or JWKSURL (RS*/ES*) must
// be set for bearer tokens to be accepted at all.
type AuthProviderConfig struct {
	JWTSecret string        // AUTH_JWT_SECRET
	JWKSURL   string        // AUTH_JWKS_URL
	Issuer    string        // AUTH_ISSUER (optional)
	Audience  string        // AUTH_AUDIENCE (optional)
	Leeway    time.Duration // AUTH_LEEWAY
}

// Enabled reports whether any bearer verification method is configured.
func (a AuthProviderConfig) Enabled() bool {
	return a.JWTSecret != "" || a.JWKSURL != ""
}

// QuotaConfig tunes lead purchasing.
type QuotaConfig struct {
	PurchaserCap int // MARKETPLACE_PURCHASER_CAP
	MaxRetries   int // QUOTA_MAX_RETRIES
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	MaxBodyBytes      int64         // request body limit, 413 above it
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Persistence
	DB DatabaseConfig

	// Identity
	Session SessionConfig
	Auth    AuthProviderConfig

	// Lead purchasing
	Quota QuotaConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)
	RedisURL  string  // REDIS_URL; when set, limits are shared across instances

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig

	// Warnings are non-fatal findings from Load, reported by the caller's logger.
	Warnings []string
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:      int64(getint("MAX_BODY_BYTES", 1<<20)),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Persistence
		DB: DatabaseConfig{
			Driver:      strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:        getenv("DB_PATH", "trademart.db"),
			URL:         getenv("DATABASE_URL", ""),
			AutoMigrate: getbool("DB_AUTO_MIGRATE", true),
		},

		// Identity
		Session: SessionConfig{
			Secret:     getenv("SESSION_SECRET", ""),
			TTL:        getdur("SESSION_TTL", 7*24*time.Hour),
			CookieName: getenv("SESSION_COOKIE_NAME", "tm_session"),
			CSRFCookie: getenv("CSRF_COOKIE_NAME", "tm_csrf"),
			CSRFHeader: getenv("CSRF_HEADER_NAME", "X-CSRF-Token"),
			Secure:     getbool("COOKIE_SECURE", true),
			Domain:     getenv("COOKIE_DOMAIN", ""),
		},
		Auth: AuthProviderConfig{
			JWTSecret: getenv("AUTH_JWT_SECRET", ""),
			JWKSURL:   getenv("AUTH_JWKS_URL", ""),
			Issuer:    getenv("AUTH_ISSUER", ""),
			Audience:  getenv("AUTH_AUDIENCE", ""),
			Leeway:    getdur("AUTH_LEEWAY", 30*time.Second),
		},

		// Lead purchasing
		Quota: QuotaConfig{
			PurchaserCap: getint("MARKETPLACE_PURCHASER_CAP", 5),
			MaxRetries:   getint("QUOTA_MAX_RETRIES", 5),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),
		RedisURL:  getenv("REDIS_URL", ""),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "trademart-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" || cfg.DB.Driver == "pg" {
		cfg.DB.Driver = "postgres"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.MaxBodyBytes <= 0 {
		return cfg, errors.New("MAX_BODY_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if strings.TrimSpace(cfg.Session.Secret) == "" {
		if cfg.GinMode == "release" {
			return cfg, errors.New("SESSION_SECRET is required in release mode")
		}
		cfg.Session.Secret = devSessionSecret
		cfg.Warnings = append(cfg.Warnings, "SESSION_SECRET not set; using a development secret")
	}
	if cfg.Session.TTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.Session.CookieName == "" || cfg.Session.CSRFCookie == "" || cfg.Session.CSRFHeader == "" {
		return cfg, errors.New("cookie and header names must not be empty")
	}
	if !cfg.Auth.Enabled() {
		cfg.Warnings = append(cfg.Warnings, "neither AUTH_JWT_SECRET nor AUTH_JWKS_URL set; bearer tokens are rejected")
	}
	if cfg.Auth.Leeway < 0 {
		return cfg, errors.New("AUTH_LEEWAY must be >= 0")
	}
	if cfg.Quota.PurchaserCap < 1 {
		return cfg, errors.New("MARKETPLACE_PURCHASER_CAP must be >= 1")
	}
	if cfg.Quota.MaxRetries < 1 {
		return cfg, errors.New("QUOTA_MAX_RETRIES must be >= 1")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := sysutil.ParseBool(os.Getenv(k)); ok {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
