// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for vendor plans,
// plan subscriptions and per-vendor lead quotas.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

// quotaColumns maps a bucket to its (used, period, limit) columns.
func quotaColumns(b domain.Bucket) (used, period, limit string, err error) {
	switch b {
	case domain.BucketDaily:
		return "daily_used", "daily_period", "daily_limit", nil
	case domain.BucketWeekly:
		return "weekly_used", "weekly_period", "weekly_limit", nil
	case domain.BucketYearly:
		return "yearly_used", "yearly_period", "yearly_limit", nil
	}
	return "", "", "", fmt.Errorf("unknown quota bucket %q", b)
}

// GetPlan fetches a plan by ID, or ErrNotFound.
func GetPlan(ctx context.Context, db *gorm.DB, id string) (*domain.VendorPlan, error) {
	var p domain.VendorPlan
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlan inserts a plan, assigning an ID when missing.
func CreatePlan(ctx context.Context, db *gorm.DB, p *domain.VendorPlan) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(p).Error
}

// ActiveSubscription returns the vendor's ACTIVE subscription covering now,
// with its plan preloaded. When several qualify, the latest start wins.
func ActiveSubscription(ctx context.Context, db *gorm.DB, vendorID string, now time.Time) (*domain.VendorPlanSubscription, error) {
	var s domain.VendorPlanSubscription
	err := db.WithContext(ctx).
		Preload("Plan").
		Where("vendor_id = ? AND status = ? AND start_date <= ?", vendorID, domain.SubscriptionActive, now).
		Where("end_date IS NULL OR end_date > ?", now).
		Order("start_date desc, created_at desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ExpireActiveSubscriptions marks every ACTIVE subscription of vendorID as
// EXPIRED and returns the number of rows changed.
func ExpireActiveSubscriptions(ctx context.Context, db *gorm.DB, vendorID string, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.VendorPlanSubscription{}).
		Where("vendor_id = ? AND status = ?", vendorID, domain.SubscriptionActive).
		Updates(map[string]any{
			"status":     domain.SubscriptionExpired,
			"end_date":   at,
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

// CreateSubscription inserts a subscription row.
func CreateSubscription(ctx context.Context, db *gorm.DB, s *domain.VendorPlanSubscription) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = domain.SubscriptionActive
	}
	return db.WithContext(ctx).Omit("Plan").Create(s).Error
}

// GetQuota returns the quota row of vendorID, or ErrNotFound.
func GetQuota(ctx context.Context, db *gorm.DB, vendorID string) (*domain.VendorLeadQuota, error) {
	var q domain.VendorLeadQuota
	if err := db.WithContext(ctx).Where("vendor_id = ?", vendorID).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// EnsureQuota returns the quota row of vendorID, creating an empty one first
// when none exists. Concurrent creators converge on a single row.
func EnsureQuota(ctx context.Context, db *gorm.DB, vendorID string) (*domain.VendorLeadQuota, error) {
	q, err := GetQuota(ctx, db, vendorID)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	row := &domain.VendorLeadQuota{VendorID: vendorID, CreatedAt: now, UpdatedAt: now}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "vendor_id"}}, DoNothing: true}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return GetQuota(ctx, db, vendorID)
}

// SyncQuotaLimits copies plan limits onto the vendor's quota row. Usage
// counters are left untouched. It is a no-op when the row already matches.
func SyncQuotaLimits(ctx context.Context, db *gorm.DB, vendorID string, plan *domain.VendorPlan) error {
	var planID *string
	updates := map[string]any{"daily_limit": 0, "weekly_limit": 0, "yearly_limit": 0, "plan_id": planID}
	if plan != nil {
		planID = &plan.ID
		updates = map[string]any{
			"daily_limit":  plan.DailyLimit,
			"weekly_limit": plan.WeeklyLimit,
			"yearly_limit": plan.YearlyLimit,
			"plan_id":      planID,
		}
	}
	updates["updated_at"] = time.Now().UTC()
	return db.WithContext(ctx).
		Model(&domain.VendorLeadQuota{}).
		Where("vendor_id = ?", vendorID).
		Updates(updates).Error
}

// ConsumeQuotaBucket takes one unit from bucket b of vendorID's quota. The
// update is conditional on the counter and period the caller observed, so a
// concurrent consumer that got there first makes it match zero rows; the
// caller then re-reads and retries. A stale observed period restarts the
// counter in the current period, as does a negative observed counter. It
// reports whether the unit was taken.
func ConsumeQuotaBucket(ctx context.Context, db *gorm.DB, vendorID string, b domain.Bucket, observedUsed int, observedPeriod string, now time.Time) (bool, error) {
	usedCol, periodCol, limitCol, err := quotaColumns(b)
	if err != nil {
		return false, err
	}
	current := domain.PeriodKey(b, now)
	next := 1
	if observedPeriod == current && observedUsed > 0 {
		next = observedUsed + 1
	}
	res := db.WithContext(ctx).
		Model(&domain.VendorLeadQuota{}).
		Where("vendor_id = ?", vendorID).
		Where(usedCol+" = ? AND "+periodCol+" = ?", observedUsed, observedPeriod).
		Where(limitCol+" >= ?", next).
		Updates(map[string]any{
			usedCol:      next,
			periodCol:    current,
			"updated_at": now.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
