// Auth HTTP handlers.
//
// This file exposes the cookie-session endpoints:
//   - POST /auth/login   (password login; sets session and CSRF cookies)
//   - POST /auth/logout  (clears both cookies)
//   - GET  /auth/me      (the resolved identity)
//
// The session cookie is HttpOnly. The CSRF cookie is readable by scripts so
// browser clients can echo it in the CSRF header on unsafe calls.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trademart-backend/internal/auth"
	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/http/middleware"
)

// LoginRequest is the JSON payload for a password login.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email,max=255" example:"vendor@example.com"`
	Password string `json:"password" binding:"required,max=128"       example:"s3cret-pass"`
}

// IdentityResponse describes the caller.
type IdentityResponse struct {
	Success  bool             `json:"success" example:"true"`
	User     domain.User      `json:"user"`
	Role     string           `json:"role" example:"VENDOR"`
	Kind     string           `json:"kind" example:"vendor"`
	Employee *domain.Employee `json:"employee,omitempty"`
	Vendor   *domain.Vendor   `json:"vendor,omitempty"`
	Buyer    *domain.Buyer    `json:"buyer,omitempty"`
}

// LoginResponse is IdentityResponse plus the CSRF token and session expiry.
type LoginResponse struct {
	IdentityResponse
	CSRFToken string    `json:"csrf_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func identityResponse(id *domain.Identity) IdentityResponse {
	return IdentityResponse{
		Success:  true,
		User:     id.User,
		Role:     id.Role(),
		Kind:     id.Kind.String(),
		Employee: id.Employee,
		Vendor:   id.Vendor,
		Buyer:    id.Buyer,
	}
}

// setCookie writes a SameSite=Lax cookie scoped to the whole site.
func (h *Handlers) setCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", h.session.Domain, h.session.Secure, httpOnly)
}

// Login godoc
// @ID          login
// @Summary     Log in with e-mail and password
// @Description Verifies the password and sets the session and CSRF cookies.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  handlers.LoginResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     413   {object}  handlers.ErrorResponse  "Body too large"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	id, token, exp, err := h.login.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		failErr(c, err)
		return
	}
	csrf, err := auth.NewCSRFToken()
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not issue CSRF token")
		return
	}

	maxAge := int(time.Until(exp).Seconds())
	h.setCookie(c, h.session.CookieName, token, maxAge, true)
	h.setCookie(c, h.session.CSRFCookie, csrf, maxAge, false)

	middleware.LoggerFrom(c).Info().
		Str("user_id", id.User.ID).
		Str("kind", id.Kind.String()).
		Msg("login")
	ok(c, http.StatusOK, LoginResponse{
		IdentityResponse: identityResponse(id),
		CSRFToken:        csrf,
		ExpiresAt:        exp,
	})
}

// Logout godoc
// @ID          logout
// @Summary     Log out
// @Description Clears the session and CSRF cookies.
// @Tags        Auth
// @Produce     json
// @Param       X-CSRF-Token  header  string  false  "CSRF token (cookie sessions)"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     403  {object}  handlers.ErrorResponse  "CSRF failure"
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	h.setCookie(c, h.session.CookieName, "", -1, true)
	h.setCookie(c, h.session.CSRFCookie, "", -1, false)
	ok(c, http.StatusOK, SuccessResponse{Success: true})
}

// Me godoc
// @ID          me
// @Summary     Current identity
// @Description Returns the caller's user row, effective role and identity record.
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.IdentityResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	if id == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	ok(c, http.StatusOK, identityResponse(id))
}
