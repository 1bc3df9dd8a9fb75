// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

// PurchasesStats returns aggregate metadata for a vendor's purchased leads:
// the total number of rows and the maximum UpdatedAt timestamp among them.
//
// When the vendor has no purchases, the returned count is 0 and
// maxUpdatedAt is nil.
func PurchasesStats(ctx context.Context, db *gorm.DB, vendorID string) (count int64, maxUpdatedAt *time.Time, err error) {
	return latestStats(ctx, db.Model(&domain.LeadPurchase{}).Where("vendor_id = ?", vendorID))
}

// NotificationsStats returns the same metadata for a user's notifications,
// using CreatedAt as the change marker.
func NotificationsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID)
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}

func latestStats(ctx context.Context, q *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q = q.WithContext(ctx)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
