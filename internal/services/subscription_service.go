// Package services – SubscriptionService
//
// This file implements plan assignment. Assigning a plan expires whatever
// subscription the vendor had, starts a new one and copies the plan limits
// onto the vendor's quota row in the same transaction, so the quota never
// reflects a plan the vendor is no longer on.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SubscriptionService manages vendor plan subscriptions.
type SubscriptionService struct {
	DB   *gorm.DB
	Caps repo.Capabilities
	Now  func() time.Time
}

// AssignPlan puts vendorID on planID starting now. durationDays <= 0 uses
// the plan's own duration.
func (s *SubscriptionService) AssignPlan(ctx context.Context, vendorID, planID string, durationDays int) (*domain.VendorPlanSubscription, error) {
	tr := otel.Tracer("services/SubscriptionService")
	ctx, span := tr.Start(ctx, "AssignPlan",
		trace.WithAttributes(
			attribute.String("vendor.id", vendorID),
			attribute.String("plan.id", planID),
		),
	)
	defer span.End()

	if !s.Caps.Subscriptions {
		return nil, ErrFeatureUnavailable
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	var out *domain.VendorPlanSubscription
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetVendor(ctx, tx, vendorID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrVendorNotFound
			}
			return err
		}
		plan, err := repo.GetPlan(ctx, tx, planID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPlanNotFound
			}
			return err
		}
		if !plan.IsActive {
			return ErrPlanNotFound
		}

		if _, err := repo.ExpireActiveSubscriptions(ctx, tx, vendorID, now); err != nil {
			return err
		}
		days := durationDays
		if days <= 0 {
			days = plan.DurationDays
		}
		sub := &domain.VendorPlanSubscription{
			VendorID:  vendorID,
			PlanID:    plan.ID,
			Status:    domain.SubscriptionActive,
			StartDate: now,
		}
		if days > 0 {
			end := now.AddDate(0, 0, days)
			sub.EndDate = &end
		}
		if err := repo.CreateSubscription(ctx, tx, sub); err != nil {
			return err
		}
		if _, err := repo.EnsureQuota(ctx, tx, vendorID); err != nil {
			return err
		}
		if err := repo.SyncQuotaLimits(ctx, tx, vendorID, plan); err != nil {
			return err
		}
		sub.Plan = *plan
		out = sub
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrVendorNotFound) || errors.Is(err, ErrPlanNotFound) {
			return nil, err
		}
		return nil, persistErr(err)
	}
	return out, nil
}
