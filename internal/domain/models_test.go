package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:domain_models_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(User{}).TableName():                   "users",
		(Employee{}).TableName():               "employees",
		(Vendor{}).TableName():                 "vendors",
		(Buyer{}).TableName():                  "buyers",
		(VendorPreference{}).TableName():       "vendor_preferences",
		(Lead{}).TableName():                   "leads",
		(LeadPurchase{}).TableName():           "lead_purchases",
		(LeadStatusHistory{}).TableName():      "lead_status_history",
		(VendorPlan{}).TableName():             "vendor_plans",
		(VendorPlanSubscription{}).TableName(): "vendor_plan_subscriptions",
		(VendorLeadQuota{}).TableName():        "vendor_lead_quotas",
		(Notification{}).TableName():           "notifications",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Indexes_AndCascades(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Vendor{}, &Lead{}, &LeadPurchase{}, &VendorPreference{}, &Notification{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	if !m.HasIndex(&LeadPurchase{}, "ux_purchase_vendor_lead") {
		t.Fatalf("expected unique index ux_purchase_vendor_lead on lead_purchases")
	}
	if !m.HasIndex(&Notification{}, "ux_notification_dedup") {
		t.Fatalf("expected unique index ux_notification_dedup on notifications")
	}

	now := time.Now().UTC()
	v := &Vendor{ID: "v1", Email: "v1@example.com", CreatedAt: now, UpdatedAt: now}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("insert vendor: %v", err)
	}
	l := &Lead{ID: "l1", Title: "Steel pipes", Status: LeadStatusActive, CreatedAt: now, UpdatedAt: now}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("insert lead: %v", err)
	}
	p := &LeadPurchase{ID: "p1", VendorID: "v1", LeadID: "l1", ConsumptionType: ConsumptionDaily, LeadStatus: LeadStatusActive, PurchasedAt: now}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("insert purchase: %v", err)
	}

	// (vendor_id, lead_id) is unique.
	dup := &LeadPurchase{ID: "p2", VendorID: "v1", LeadID: "l1", ConsumptionType: ConsumptionPaid, LeadStatus: LeadStatusActive, PurchasedAt: now}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation on (vendor_id, lead_id)")
	}

	// CASCADE: deleting the lead removes its purchases.
	if err := db.Delete(&Lead{}, "id = ?", "l1").Error; err != nil {
		t.Fatalf("delete lead: %v", err)
	}
	var cnt int64
	if err := db.Model(&LeadPurchase{}).Where("lead_id = ?", "l1").Count(&cnt).Error; err != nil {
		t.Fatalf("count purchases: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected purchases to cascade-delete, got %d", cnt)
	}
}

func TestVendorPreference_JSONAndDecimalRoundTrip(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Vendor{}, &VendorPreference{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := db.Create(&Vendor{ID: "v1", Email: "v@example.com"}).Error; err != nil {
		t.Fatalf("insert vendor: %v", err)
	}

	pref := &VendorPreference{
		VendorID:   "v1",
		Categories: datatypes.JSONSlice[string]{"Steel", "Pipes"},
		Cities:     datatypes.JSONSlice[string]{"Pune"},
		MinBudget:  decimal.NewNullDecimal(decimal.RequireFromString("1000.50")),
	}
	if err := db.Create(pref).Error; err != nil {
		t.Fatalf("insert preference: %v", err)
	}

	var got VendorPreference
	if err := db.First(&got, "vendor_id = ?", "v1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if len(got.Categories) != 2 || got.Categories[1] != "Pipes" {
		t.Fatalf("categories mismatch: %v", got.Categories)
	}
	if len(got.States) != 0 {
		t.Fatalf("expected no states, got %v", got.States)
	}
	if !got.MinBudget.Valid || !got.MinBudget.Decimal.Equal(decimal.RequireFromString("1000.5")) {
		t.Fatalf("min budget mismatch: %+v", got.MinBudget)
	}
	if got.MaxBudget.Valid {
		t.Fatalf("max budget should be NULL, got %+v", got.MaxBudget)
	}
}

func TestLead_AssignmentHelpers(t *testing.T) {
	l := Lead{}
	if !l.IsMarketplace() {
		t.Fatalf("lead without vendor must be a marketplace lead")
	}
	empty := ""
	l.VendorID = &empty
	if !l.IsMarketplace() {
		t.Fatalf("lead with empty vendor id must be a marketplace lead")
	}
	v := "v1"
	l.VendorID = &v
	if l.IsMarketplace() || !l.AssignedTo("v1") || l.AssignedTo("v2") {
		t.Fatalf("assignment helpers disagree: %+v", l)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{LeadStatusActive, LeadStatusViewed, true},
		{LeadStatusActive, LeadStatusClosed, true},
		{LeadStatusViewed, LeadStatusClosed, true},
		{LeadStatusViewed, LeadStatusActive, false},
		{LeadStatusClosed, LeadStatusViewed, false},
		{LeadStatusActive, LeadStatusActive, false},
		{"", LeadStatusActive, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Fatalf("CanTransition(%q,%q)=%v; want %v", c.from, c.to, got, c.want)
		}
	}
	if ValidLeadStatus("PENDING") || !ValidLeadStatus(LeadStatusViewed) {
		t.Fatalf("ValidLeadStatus mismatch")
	}
}
