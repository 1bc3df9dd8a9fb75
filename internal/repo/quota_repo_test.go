package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

func quotaModels() []any {
	return []any{&domain.Vendor{}, &domain.VendorPlan{}, &domain.VendorPlanSubscription{}, &domain.VendorLeadQuota{}}
}

func TestActiveSubscription_LatestStartWinsAndExpiry(t *testing.T) {
	db := newTestDB(t, quotaModels()...)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	basic := &domain.VendorPlan{Name: "Basic", DailyLimit: 1, WeeklyLimit: 3, YearlyLimit: 10}
	pro := &domain.VendorPlan{Name: "Pro", DailyLimit: 5, WeeklyLimit: 20, YearlyLimit: 200}
	for _, p := range []*domain.VendorPlan{basic, pro} {
		if err := CreatePlan(ctx, db, p); err != nil {
			t.Fatalf("CreatePlan: %v", err)
		}
	}

	if _, err := ActiveSubscription(ctx, db, "v1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without subscriptions, got %v", err)
	}

	past := now.Add(-time.Hour)
	subs := []*domain.VendorPlanSubscription{
		{VendorID: "v1", PlanID: basic.ID, StartDate: now.AddDate(0, -2, 0)},
		{VendorID: "v1", PlanID: pro.ID, StartDate: now.AddDate(0, -1, 0)},
		{VendorID: "v1", PlanID: pro.ID, StartDate: now.AddDate(0, 0, -1), EndDate: &past}, // ended
		{VendorID: "v1", PlanID: basic.ID, StartDate: now.AddDate(0, 0, 1)},                // future
	}
	for _, s := range subs {
		if err := CreateSubscription(ctx, db, s); err != nil {
			t.Fatalf("CreateSubscription: %v", err)
		}
	}

	got, err := ActiveSubscription(ctx, db, "v1", now)
	if err != nil {
		t.Fatalf("ActiveSubscription: %v", err)
	}
	if got.ID != subs[1].ID || got.Plan.Name != "Pro" {
		t.Fatalf("expected latest-start Pro subscription, got %+v", got)
	}

	n, err := ExpireActiveSubscriptions(ctx, db, "v1", now)
	if err != nil || n != 4 {
		t.Fatalf("ExpireActiveSubscriptions = %d, %v", n, err)
	}
	if _, err := ActiveSubscription(ctx, db, "v1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no active subscription after expiry, got %v", err)
	}
}

func TestEnsureQuota_CreatesOnceAndSyncsLimits(t *testing.T) {
	db := newTestDB(t, quotaModels()...)
	ctx := context.Background()

	q, err := EnsureQuota(ctx, db, "v1")
	if err != nil {
		t.Fatalf("EnsureQuota: %v", err)
	}
	if q.VendorID != "v1" || q.DailyLimit != 0 || q.DailyUsed != 0 {
		t.Fatalf("unexpected fresh quota: %+v", q)
	}
	if _, err := EnsureQuota(ctx, db, "v1"); err != nil {
		t.Fatalf("EnsureQuota again: %v", err)
	}
	var rows int64
	db.Model(&domain.VendorLeadQuota{}).Count(&rows)
	if rows != 1 {
		t.Fatalf("expected a single quota row, got %d", rows)
	}

	plan := &domain.VendorPlan{ID: "plan-1", Name: "Pro", DailyLimit: 2, WeeklyLimit: 5, YearlyLimit: 20}
	if err := SyncQuotaLimits(ctx, db, "v1", plan); err != nil {
		t.Fatalf("SyncQuotaLimits: %v", err)
	}
	q, _ = GetQuota(ctx, db, "v1")
	if q.DailyLimit != 2 || q.WeeklyLimit != 5 || q.YearlyLimit != 20 || q.PlanID == nil || *q.PlanID != "plan-1" {
		t.Fatalf("limits not synced: %+v", q)
	}

	if err := SyncQuotaLimits(ctx, db, "v1", nil); err != nil {
		t.Fatalf("SyncQuotaLimits(nil): %v", err)
	}
	q, _ = GetQuota(ctx, db, "v1")
	if q.DailyLimit != 0 || q.YearlyLimit != 0 || q.PlanID != nil {
		t.Fatalf("limits not cleared: %+v", q)
	}
}

func TestConsumeQuotaBucket_ConditionalOnObservedState(t *testing.T) {
	db := newTestDB(t, quotaModels()...)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	today := domain.PeriodKey(domain.BucketDaily, now)

	seed := &domain.VendorLeadQuota{VendorID: "v1", DailyLimit: 2, DailyUsed: 1, DailyPeriod: today}
	if err := db.Create(seed).Error; err != nil {
		t.Fatalf("seed quota: %v", err)
	}

	// Stale observation loses.
	ok, err := ConsumeQuotaBucket(ctx, db, "v1", domain.BucketDaily, 0, today, now)
	if err != nil || ok {
		t.Fatalf("stale observation must not match: ok=%v err=%v", ok, err)
	}

	// Correct observation wins once.
	ok, err = ConsumeQuotaBucket(ctx, db, "v1", domain.BucketDaily, 1, today, now)
	if err != nil || !ok {
		t.Fatalf("expected consume: ok=%v err=%v", ok, err)
	}
	q, _ := GetQuota(ctx, db, "v1")
	if q.Remaining(domain.BucketDaily, now) != 0 {
		t.Fatalf("expected daily exhausted, got %+v", q)
	}

	// Limit guard: never exceeds the limit even with a matching observation.
	ok, err = ConsumeQuotaBucket(ctx, db, "v1", domain.BucketDaily, 2, today, now)
	if err != nil || ok {
		t.Fatalf("consume beyond limit must fail: ok=%v err=%v", ok, err)
	}

	// Next day: the stale period restarts the counter.
	tomorrow := now.Add(24 * time.Hour)
	ok, err = ConsumeQuotaBucket(ctx, db, "v1", domain.BucketDaily, 2, today, tomorrow)
	if err != nil || !ok {
		t.Fatalf("rollover consume: ok=%v err=%v", ok, err)
	}
	q, _ = GetQuota(ctx, db, "v1")
	if q.DailyUsed != 1 || q.DailyPeriod != domain.PeriodKey(domain.BucketDaily, tomorrow) {
		t.Fatalf("expected counter restarted in new period, got %+v", q)
	}

	if _, err := ConsumeQuotaBucket(ctx, db, "v1", domain.Bucket("monthly"), 0, "", now); err == nil {
		t.Fatalf("expected error for unknown bucket")
	}
}
