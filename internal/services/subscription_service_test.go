package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/repo"
)

func TestAssignPlan_ReplacesSubscriptionAndSyncsQuota(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedVendor(t, db, "v1")
	seedPlan(t, db, "v1", 1, 1, 1)
	seedMarketLead(t, db, "l1", nil)

	gold := &domain.VendorPlan{Name: "Platinum", DailyLimit: 10, WeeklyLimit: 40, YearlyLimit: 500, DurationDays: 30, IsActive: true, Price: decimal.NewFromInt(9999)}
	if err := repo.CreatePlan(ctx, db, gold); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	qs := newQuotaService(db)
	if res, err := qs.Consume(ctx, "v1", "l1", ModeAuto, decimal.Zero); err != nil || !res.Success {
		t.Fatalf("Consume: %+v %v", res, err)
	}

	subs := &SubscriptionService{DB: db, Caps: repo.AllCapabilities(), Now: func() time.Time { return fixedNow }}
	sub, err := subs.AssignPlan(ctx, "v1", gold.ID, 0)
	if err != nil {
		t.Fatalf("AssignPlan: %v", err)
	}
	if sub.Status != domain.SubscriptionActive || sub.EndDate == nil || !sub.EndDate.Equal(fixedNow.AddDate(0, 0, 30)) {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	if n := countRows(t, db, &domain.VendorPlanSubscription{}, "vendor_id = ? AND status = ?", "v1", domain.SubscriptionActive); n != 1 {
		t.Fatalf("expected exactly one ACTIVE subscription, got %d", n)
	}

	q := mustQuota(t, db, "v1")
	if q.PlanID == nil || *q.PlanID != gold.ID || q.DailyLimit != 10 || q.YearlyLimit != 500 {
		t.Fatalf("quota limits not synced: %+v", q)
	}
	if q.Used(domain.BucketDaily, fixedNow) != 1 {
		t.Fatalf("usage must survive a plan change, got %d", q.Used(domain.BucketDaily, fixedNow))
	}

	snap, err := qs.Snapshot(ctx, "v1")
	if err != nil || snap.DailyRemaining != 9 {
		t.Fatalf("Snapshot: %+v %v", snap, err)
	}
}

func TestAssignPlan_Errors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedVendor(t, db, "v1")
	retired := &domain.VendorPlan{Name: "Old", IsActive: true}
	if err := repo.CreatePlan(ctx, db, retired); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	db.Model(retired).Update("is_active", false)

	subs := &SubscriptionService{DB: db, Caps: repo.AllCapabilities()}
	if _, err := subs.AssignPlan(ctx, "missing", retired.ID, 0); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
	if _, err := subs.AssignPlan(ctx, "v1", "missing", 0); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
	if _, err := subs.AssignPlan(ctx, "v1", retired.ID, 0); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("inactive plan: expected ErrPlanNotFound, got %v", err)
	}
	subs.Caps.Subscriptions = false
	if _, err := subs.AssignPlan(ctx, "v1", retired.ID, 0); !errors.Is(err, ErrFeatureUnavailable) {
		t.Fatalf("expected ErrFeatureUnavailable, got %v", err)
	}
}

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for i, title := range []string{"first", "second", "third"} {
		if _, err := repo.CreateNotification(ctx, db, &domain.Notification{
			UserID: "u1", Type: domain.NotificationLeadPurchased, Title: title,
			CreatedAt: fixedNow.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	s := &NotificationService{DB: db, Caps: repo.AllCapabilities()}

	items, total, err := s.ListPage(ctx, "u1", false, 1, 2)
	if err != nil || total != 3 || len(items) != 2 || items[0].Title != "third" {
		t.Fatalf("ListPage: total=%d items=%+v err=%v", total, items, err)
	}
	if err := s.MarkRead(ctx, "u1", items[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := s.MarkRead(ctx, "u2", items[1].ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("foreign notification: expected ErrNotificationNotFound, got %v", err)
	}
	_, unread, err := s.ListPage(ctx, "u1", true, 1, 10)
	if err != nil || unread != 2 {
		t.Fatalf("unread = %d (%v), want 2", unread, err)
	}
	n, at, err := s.Stats(ctx, "u1")
	if err != nil || n != 3 || at == nil || !at.Equal(fixedNow.Add(2*time.Minute)) {
		t.Fatalf("Stats: %d %v %v", n, at, err)
	}

	s.Caps.Notifications = false
	if items, total, err := s.ListPage(ctx, "u1", false, 1, 10); err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("without the table the list is empty, got %d %v", total, err)
	}
}
