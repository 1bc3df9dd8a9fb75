package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// securityRouter mirrors the router: baseline headers everywhere, no-store
// layered on the vendor group that returns buyer contact details.
func securityRouter(global SecurityOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Header(requestIDHeader, "rid-1")
		c.Next()
	})
	r.Use(SecurityHeaders(global))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	vendors := r.Group("/vendors/me", SecurityHeaders(SecurityOptions{NoStore: true}))
	vendors.GET("/leads", func(c *gin.Context) { c.String(http.StatusOK, `{"contact_phone":"+91-9800000000"}`) })
	return r
}

func TestSecurityHeaders_VendorRoutesAreNotCached(t *testing.T) {
	r := securityRouter(SecurityOptions{EnablePolicy: true})

	cases := []struct {
		path      string
		wantCache string
	}{
		{"/health", ""},
		{"/vendors/me/leads", "no-store"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			h := w.Header()
			if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" || h.Get("Referrer-Policy") != "no-referrer" {
				t.Fatalf("baseline headers missing: %#v", h)
			}
			if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
				t.Fatalf("policy headers missing: %#v", h)
			}
			if got := h.Get("Cache-Control"); got != tc.wantCache {
				t.Fatalf("Cache-Control = %q; want %q", got, tc.wantCache)
			}
			if tc.wantCache != "" && (h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0") {
				t.Fatalf("no-store must come with Pragma and Expires: %#v", h)
			}
			// Stacking the middleware must not list the request id twice.
			if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID" {
				t.Fatalf("Access-Control-Expose-Headers = %q", got)
			}
		})
	}
}

func TestSecurityHeaders_ExposeHeaderMerge(t *testing.T) {
	cases := []struct {
		name     string
		existing string
		want     string
	}{
		{"appends after cors list", "ETag, " + HeaderIdempotencyReplayed, "ETag, Idempotency-Replayed, X-Request-ID"},
		{"keeps existing entry", "X-Request-ID, Retry-After", "X-Request-ID, Retry-After"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(func(c *gin.Context) {
				c.Header(requestIDHeader, "rid-2")
				c.Header("Access-Control-Expose-Headers", tc.existing)
				c.Next()
			})
			r.Use(SecurityHeaders(SecurityOptions{}))
			r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
			if got := w.Header().Get("Access-Control-Expose-Headers"); got != tc.want {
				t.Fatalf("got %q; want %q", got, tc.want)
			}
		})
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	cases := []struct {
		name   string
		maxAge time.Duration
		setup  func(*http.Request)
		want   string
	}{
		{"plain http", time.Hour, func(*http.Request) {}, ""},
		{"direct tls", 24 * time.Hour, func(r *http.Request) { r.TLS = &tls.ConnectionState{} }, "max-age=86400; includeSubDomains; preload"},
		{"behind proxy", time.Hour, func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "https") }, "max-age=3600; includeSubDomains; preload"},
		{"default max age", 0, func(r *http.Request) { r.TLS = &tls.ConnectionState{} }, "max-age=15552000; includeSubDomains; preload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := securityRouter(SecurityOptions{EnableHSTS: true, HSTSMaxAge: tc.maxAge})
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if got := w.Header().Get("Strict-Transport-Security"); got != tc.want {
				t.Fatalf("HSTS = %q; want %q", got, tc.want)
			}
		})
	}
}

func Test_isHTTPS(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTTPS(plain) {
		t.Fatalf("plain HTTP should not be https")
	}
	proxied := httptest.NewRequest(http.MethodGet, "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "http")
	if isHTTPS(proxied) {
		t.Fatalf("X-Forwarded-Proto=http should not be https")
	}
}
