// Vendor HTTP handlers.
//
// This file exposes the vendor workspace:
//   - GET   /vendors/me/leads                (purchased leads, paginated, ETag)
//   - GET   /vendors/me/marketplace          (leads open for purchase)
//   - POST  /vendors/me/leads/:id/purchase   (quota-resolved purchase, Idempotency-Key aware)
//   - PATCH /vendors/me/leads/:id/status     (purchased-lead status transition)
//   - GET   /vendors/me/quota                (remaining daily/weekly/yearly counts)
//   - GET   /vendors/me/preferences          (lead preferences)
//   - PUT   /vendors/me/preferences          (replace lead preferences)
//
// Every route runs behind middleware.RequireVendor, so currentVendor is never
// nil inside these handlers.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/http/middleware"
	"github.com/tbourn/go-trademart-backend/internal/services"
	"github.com/tbourn/go-trademart-backend/internal/utils"
)

//
// DTOs
//

// LeadContact is the buyer contact released to a purchasing vendor.
type LeadContact struct {
	Name  string `json:"name"  example:"Ravi Kumar"`
	Phone string `json:"phone" example:"+91-9800000000"`
	Email string `json:"email" example:"ravi@example.com"`
}

// PurchasedLead is a purchase row with its lead and the unlocked contact.
type PurchasedLead struct {
	domain.LeadPurchase
	Contact LeadContact `json:"contact"`
}

func purchasedLead(p domain.LeadPurchase) PurchasedLead {
	return PurchasedLead{
		LeadPurchase: p,
		Contact: LeadContact{
			Name:  p.Lead.ContactName,
			Phone: p.Lead.ContactPhone,
			Email: p.Lead.ContactEmail,
		},
	}
}

// PurchasedLeadsResponse is a page of purchased leads.
type PurchasedLeadsResponse struct {
	Success    bool            `json:"success" example:"true"`
	Leads      []PurchasedLead `json:"leads"`
	Pagination Pagination      `json:"pagination"`
}

// MarketplaceResponse lists leads the vendor may still buy.
type MarketplaceResponse struct {
	Success bool          `json:"success" example:"true"`
	Leads   []domain.Lead `json:"leads"`
	Count   int           `json:"count" example:"12"`
}

// PurchaseRequest selects how a purchase is paid for. Both fields are optional;
// mode defaults to AUTO and a zero price falls back to the lead's list price.
type PurchaseRequest struct {
	Mode  string           `json:"mode"  example:"AUTO" enums:"AUTO,USE_WEEKLY,BUY_EXTRA,PAID"`
	Price *decimal.Decimal `json:"price" swaggertype:"string" example:"250.00"`
}

// PurchaseResponse is the outcome of a purchase. A refused quota purchase is
// returned with 402, success=false and the modes that would succeed.
type PurchaseResponse struct {
	Success          bool                 `json:"success"`
	Code             string               `json:"code,omitempty" example:"quota_exhausted"`
	Error            string               `json:"error,omitempty"`
	RequestID        string               `json:"request_id,omitempty"`
	ExistingPurchase bool                 `json:"existing_purchase"`
	ConsumptionType  string               `json:"consumption_type,omitempty" example:"DAILY_INCLUDED"`
	Purchase         *PurchasedLead       `json:"purchase,omitempty"`
	Quota            domain.QuotaSnapshot `json:"quota"`
	RequiredModes    []services.Mode      `json:"required_modes,omitempty" swaggertype:"array,string"`
}

// UpdateStatusRequest moves a purchased lead to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,max=16" example:"VIEWED"`
}

// PurchaseStatusResponse returns the updated purchase.
type PurchaseStatusResponse struct {
	Success  bool          `json:"success" example:"true"`
	Purchase PurchasedLead `json:"purchase"`
}

// QuotaResponse wraps a quota snapshot.
type QuotaResponse struct {
	Success bool                 `json:"success" example:"true"`
	Quota   domain.QuotaSnapshot `json:"quota"`
}

// PreferencesRequest replaces a vendor's lead preferences.
type PreferencesRequest struct {
	Categories []string         `json:"categories" example:"steel pipes"`
	Cities     []string         `json:"cities"     example:"Pune"`
	States     []string         `json:"states"     example:"Maharashtra"`
	MinBudget  *decimal.Decimal `json:"min_budget" swaggertype:"string" example:"10000"`
	MaxBudget  *decimal.Decimal `json:"max_budget" swaggertype:"string" example:"500000"`
}

// PreferencesResponse returns saved preferences; null when none were saved.
type PreferencesResponse struct {
	Success     bool                     `json:"success" example:"true"`
	Preferences *domain.VendorPreference `json:"preferences"`
}

//
// Handlers
//

const maxQueryRunes = 200

// ListLeads godoc
// @ID          listPurchasedLeads
// @Summary     List purchased leads
// @Description Returns the vendor's purchased leads, most recent first, with buyer contact details. Supports If-None-Match.
// @Tags        Vendor
// @Produce     json
// @Security    BearerAuth
// @Param       status         query   string  false  "Filter by lead status"  Enums(ACTIVE,VIEWED,CLOSED)
// @Param       page           query   int     false  "Page (>=1)"             minimum(1) default(1)
// @Param       page_size      query   int     false  "Page size (1..100)"     minimum(1) maximum(100) default(20)
// @Param       If-None-Match  header  string  false  "ETag from a previous response"
// @Success     200  {object}  handlers.PurchasedLeadsResponse
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a vendor"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /vendors/me/leads [get]
func (h *Handlers) ListLeads(c *gin.Context) {
	v := currentVendor(c)
	ctx := c.Request.Context()
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	if status != "" && !domain.ValidLeadStatus(status) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid status filter")
		return
	}
	page, pageSize := clampPagination(c)

	count, maxTS, err := h.leads.PurchasedStats(ctx, v.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	scope := fmt.Sprintf("leads:%s:%s:%d:%d", v.ID, status, page, pageSize)
	if notModified(c, scope, count, maxTS) {
		return
	}

	rows, total, err := h.leads.ListPurchasedPage(ctx, v.ID, status, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	out := make([]PurchasedLead, 0, len(rows))
	for _, p := range rows {
		out = append(out, purchasedLead(p))
	}
	ok(c, http.StatusOK, PurchasedLeadsResponse{
		Success:    true,
		Leads:      out,
		Pagination: newPagination(page, pageSize, total),
	})
}

// Marketplace godoc
// @ID          marketplace
// @Summary     Browse the marketplace
// @Description Lists open leads the vendor has not bought, filtered by saved preferences and ranked by the optional query.
// @Tags        Vendor
// @Produce     json
// @Security    BearerAuth
// @Param       q      query  string  false  "Free-text query"
// @Param       limit  query  int     false  "Max results (1..100)"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.MarketplaceResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a vendor"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /vendors/me/marketplace [get]
func (h *Handlers) Marketplace(c *gin.Context) {
	v := currentVendor(c)
	limit := utils.BoundedInt(c.Query("limit"), 20, 1, 100)
	q := utils.TruncateRunes(strings.TrimSpace(c.Query("q")), maxQueryRunes)

	leads, err := h.leads.Marketplace(c.Request.Context(), v.ID, q, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	ok(c, http.StatusOK, MarketplaceResponse{Success: true, Leads: leads, Count: len(leads)})
}

// PurchaseLead godoc
// @ID          purchaseLead
// @Summary     Purchase a lead
// @Description Consumes quota (daily, weekly, then yearly under AUTO) or records a paid purchase.
// @Description Buying a lead twice returns the original purchase with existing_purchase=true.
// @Description With Idempotency-Key, retries replay the first response status and set Idempotency-Replayed.
// @Tags        Vendor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id               path    string                    true   "Lead ID"
// @Param       Idempotency-Key  header  string                    false  "Idempotency key"
// @Param       X-CSRF-Token     header  string                    false  "CSRF token (cookie sessions)"
// @Param       body             body    handlers.PurchaseRequest  false  "Purchase mode"
// @Success     201  {object}  handlers.PurchaseResponse  "Purchased"
// @Success     200  {object}  handlers.PurchaseResponse  "Already owned"
// @Failure     400  {object}  handlers.ErrorResponse     "Invalid mode or price"
// @Failure     402  {object}  handlers.PurchaseResponse  "Quota exhausted"
// @Failure     404  {object}  handlers.ErrorResponse     "Lead not found or unavailable"
// @Failure     409  {object}  handlers.ErrorResponse     "Quota contention"
// @Failure     503  {object}  handlers.ErrorResponse     "Feature unavailable"
// @Router      /vendors/me/leads/{id}/purchase [post]
func (h *Handlers) PurchaseLead(c *gin.Context) {
	v := currentVendor(c)
	ctx := c.Request.Context()
	leadID := strings.TrimSpace(c.Param("id"))
	if leadID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "missing lead id")
		return
	}

	var req PurchaseRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	mode, err := services.ParseMode(strings.ToUpper(strings.TrimSpace(req.Mode)))
	if err != nil {
		failErr(c, err)
		return
	}
	price := decimal.Zero
	if req.Price != nil {
		price = *req.Price
	}

	// A recorded key means this purchase already completed once.
	uid := c.GetString("userID")
	key, _ := middleware.GetIdempotencyKey(c)
	var replay *domain.Idempotency
	switch {
	case middleware.IdempotencyChecked(c):
		replay, _ = middleware.ReplayedResult(c)
	case key != "" && h.idem != nil:
		if replay, err = h.idem.Get(ctx, uid, leadID, key); err != nil {
			failErr(c, err)
			return
		}
	}

	res, err := h.quota.Consume(ctx, v.ID, leadID, mode, price)
	if err != nil {
		failErr(c, err)
		return
	}

	if !res.Success {
		ok(c, http.StatusPaymentRequired, PurchaseResponse{
			Success:       false,
			Code:          ErrCodeQuotaExhausted,
			Error:         "lead quota exhausted",
			RequestID:     c.Writer.Header().Get("X-Request-ID"),
			Quota:         res.Quota,
			RequiredModes: res.RequiredModes,
		})
		return
	}

	status := http.StatusCreated
	if res.ExistingPurchase {
		status = http.StatusOK
	}
	switch {
	case replay != nil:
		status = replay.Status
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	case key != "" && h.idem != nil && res.Purchase != nil:
		if err := h.idem.Save(ctx, uid, leadID, key, res.Purchase.ID, status); err != nil {
			// The purchase itself committed; a lost key only costs a 200 on retry.
			middleware.LoggerFrom(c).Warn().Err(err).Str("lead_id", leadID).Msg("idempotency save failed")
		}
	}

	body := PurchaseResponse{
		Success:          true,
		ExistingPurchase: res.ExistingPurchase,
		ConsumptionType:  res.ConsumptionType,
		Quota:            res.Quota,
	}
	if res.Purchase != nil {
		pl := purchasedLead(*res.Purchase)
		body.Purchase = &pl
	}
	ok(c, status, body)
}

// UpdateLeadStatus godoc
// @ID          updateLeadStatus
// @Summary     Update a purchased lead's status
// @Description Moves the vendor's copy of a lead along ACTIVE → VIEWED → CLOSED, or straight to CLOSED.
// @Tags        Vendor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id            path    string                        true   "Lead ID"
// @Param       X-CSRF-Token  header  string                        false  "CSRF token (cookie sessions)"
// @Param       body          body    handlers.UpdateStatusRequest  true   "New status"
// @Success     200  {object}  handlers.PurchaseStatusResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid status"
// @Failure     404  {object}  handlers.ErrorResponse  "Purchase not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Invalid transition"
// @Router      /vendors/me/leads/{id}/status [patch]
func (h *Handlers) UpdateLeadStatus(c *gin.Context) {
	v := currentVendor(c)
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.leads.UpdateStatus(c.Request.Context(), v.ID, c.Param("id"), req.Status)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, PurchaseStatusResponse{Success: true, Purchase: purchasedLead(*p)})
}

// Quota godoc
// @ID          vendorQuota
// @Summary     Current lead quota
// @Tags        Vendor
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.QuotaResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a vendor"
// @Router      /vendors/me/quota [get]
func (h *Handlers) Quota(c *gin.Context) {
	snap, err := h.quota.Snapshot(c.Request.Context(), currentVendor(c).ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, QuotaResponse{Success: true, Quota: snap})
}

// GetPreferences godoc
// @ID          getPreferences
// @Summary     Lead preferences
// @Tags        Vendor
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.PreferencesResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Router      /vendors/me/preferences [get]
func (h *Handlers) GetPreferences(c *gin.Context) {
	p, err := h.leads.Preferences(c.Request.Context(), currentVendor(c).ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, PreferencesResponse{Success: true, Preferences: p})
}

// PutPreferences godoc
// @ID          putPreferences
// @Summary     Replace lead preferences
// @Tags        Vendor
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-CSRF-Token  header  string                       false  "CSRF token (cookie sessions)"
// @Param       body          body    handlers.PreferencesRequest  true   "Preferences"
// @Success     200  {object}  handlers.PreferencesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid preferences"
// @Failure     503  {object}  handlers.ErrorResponse  "Feature unavailable"
// @Router      /vendors/me/preferences [put]
func (h *Handlers) PutPreferences(c *gin.Context) {
	var req PreferencesRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.leads.SavePreferences(c.Request.Context(), currentVendor(c).ID, services.PreferencesInput{
		Categories: req.Categories,
		Cities:     req.Cities,
		States:     req.States,
		MinBudget:  req.MinBudget,
		MaxBudget:  req.MaxBudget,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, PreferencesResponse{Success: true, Preferences: p})
}
