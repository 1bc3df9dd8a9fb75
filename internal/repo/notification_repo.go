// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Notification model.
//
// Error semantics:
//   - Deduplicated notifications (same user_id, dedup_key) are not an error:
//     CreateNotification reports created=false instead.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

// CreateNotification inserts n unless a notification with the same
// (user_id, dedup_key) already exists. Rows without a dedup key are always
// inserted. It reports whether a row was written.
func CreateNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "dedup_key"}},
			DoNothing: true,
		}).
		Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountNotifications returns the number of notifications for userID,
// optionally restricted to unread ones.
func CountNotifications(ctx context.Context, db *gorm.DB, userID string, unreadOnly bool) (int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Count(&total).Error
	return total, err
}

// ListNotificationsPage returns a page of userID's notifications, newest first.
func ListNotificationsPage(ctx context.Context, db *gorm.DB, userID string, unreadOnly bool, offset, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// MarkNotificationRead flags notification id of userID as read. If no row
// matches (missing or owned by someone else) it returns ErrNotFound.
func MarkNotificationRead(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
