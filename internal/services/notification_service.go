// Package services – NotificationService
//
// This file implements the read side of user notifications: paginated
// listing and marking a notification read. Notifications are written by the
// services that raise them (see QuotaService).
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/repo"
)

// NotificationService lists and acknowledges a user's notifications.
type NotificationService struct {
	DB   *gorm.DB
	Caps repo.Capabilities
}

// ListPage returns a page of userID's notifications, newest first.
func (s *NotificationService) ListPage(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]domain.Notification, int64, error) {
	if !s.Caps.Notifications {
		return []domain.Notification{}, 0, nil
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountNotifications(ctx, s.DB, userID, unreadOnly)
	if err != nil {
		return nil, 0, persistErr(err)
	}
	if total == 0 {
		return []domain.Notification{}, 0, nil
	}
	items, err := repo.ListNotificationsPage(ctx, s.DB, userID, unreadOnly, offset, pageSize)
	if err != nil {
		return nil, 0, persistErr(err)
	}
	return items, total, nil
}

// Stats returns the notification count and newest timestamp used for ETags.
func (s *NotificationService) Stats(ctx context.Context, userID string) (int64, *time.Time, error) {
	if !s.Caps.Notifications {
		return 0, nil, nil
	}
	n, at, err := repo.NotificationsStats(ctx, s.DB, userID)
	return n, at, persistErr(err)
}

// MarkRead marks notification id of userID as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if !s.Caps.Notifications {
		return ErrNotificationNotFound
	}
	if err := repo.MarkNotificationRead(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return persistErr(err)
	}
	return nil
}
