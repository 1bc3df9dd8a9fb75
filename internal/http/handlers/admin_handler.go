package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/http/middleware"
)

// AssignSubscriptionRequest puts a vendor on a plan. A zero duration uses
// the plan's own duration.
type AssignSubscriptionRequest struct {
	PlanID       string `json:"plan_id"       binding:"required,max=64" example:"0b9f7c1e-5d2a-4a4e-9d3c-2f1b0a9e8c7d"`
	DurationDays int    `json:"duration_days" binding:"min=0,max=3650"  example:"365"`
}

// SubscriptionResponse returns the new subscription.
type SubscriptionResponse struct {
	Success      bool                          `json:"success" example:"true"`
	Subscription domain.VendorPlanSubscription `json:"subscription"`
}

// AssignSubscription godoc
// @ID          assignSubscription
// @Summary     Assign a plan to a vendor
// @Description Expires the vendor's active subscription, starts a new one and resets quota limits to the plan.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id            path    string                              true   "Vendor ID"
// @Param       X-CSRF-Token  header  string                              false  "CSRF token (cookie sessions)"
// @Param       body          body    handlers.AssignSubscriptionRequest  true   "Plan"
// @Success     200  {object}  handlers.SubscriptionResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an administrator"
// @Failure     404  {object}  handlers.ErrorResponse  "Vendor or plan not found"
// @Router      /admin/vendors/{id}/subscription [put]
func (h *Handlers) AssignSubscription(c *gin.Context) {
	var req AssignSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.subs.AssignPlan(c.Request.Context(), c.Param("id"), req.PlanID, req.DurationDays)
	if err != nil {
		failErr(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().
		Str("vendor_id", sub.VendorID).
		Str("plan_id", sub.PlanID).
		Str("by", c.GetString("userID")).
		Msg("subscription assigned")
	ok(c, http.StatusOK, SubscriptionResponse{Success: true, Subscription: *sub})
}
