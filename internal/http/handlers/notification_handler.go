package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

// NotificationsResponse is a page of notifications.
type NotificationsResponse struct {
	Success       bool                  `json:"success" example:"true"`
	Notifications []domain.Notification `json:"notifications"`
	Pagination    Pagination            `json:"pagination"`
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List notifications
// @Description Returns the caller's notifications, newest first. Supports If-None-Match.
// @Tags        Notifications
// @Produce     json
// @Security    BearerAuth
// @Param       unread         query   bool    false  "Only unread"
// @Param       page           query   int     false  "Page (>=1)"          minimum(1) default(1)
// @Param       page_size      query   int     false  "Page size (1..100)"  minimum(1) maximum(100) default(20)
// @Param       If-None-Match  header  string  false  "ETag from a previous response"
// @Success     200  {object}  handlers.NotificationsResponse
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Router      /notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	uid := c.GetString("userID")
	ctx := c.Request.Context()
	unread := c.Query("unread") == "true" || c.Query("unread") == "1"
	page, pageSize := clampPagination(c)

	count, maxTS, err := h.notes.Stats(ctx, uid)
	if err != nil {
		failErr(c, err)
		return
	}
	if notModified(c, fmt.Sprintf("notes:%s:%t:%d:%d", uid, unread, page, pageSize), count, maxTS) {
		return
	}

	rows, total, err := h.notes.ListPage(ctx, uid, unread, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	if rows == nil {
		rows = []domain.Notification{}
	}
	ok(c, http.StatusOK, NotificationsResponse{
		Success:       true,
		Notifications: rows,
		Pagination:    newPagination(page, pageSize, total),
	})
}

// MarkNotificationRead godoc
// @ID          markNotificationRead
// @Summary     Mark a notification read
// @Tags        Notifications
// @Produce     json
// @Security    BearerAuth
// @Param       id            path    string  true   "Notification ID"
// @Param       X-CSRF-Token  header  string  false  "CSRF token (cookie sessions)"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /notifications/{id}/read [post]
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := h.notes.MarkRead(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, SuccessResponse{Success: true})
}
