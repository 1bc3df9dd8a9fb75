package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Subscription statuses.
const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionExpired   = "EXPIRED"
	SubscriptionCancelled = "CANCELLED"
)

// Consumption types recorded on a LeadPurchase.
const (
	ConsumptionDaily     = "DAILY_INCLUDED"
	ConsumptionWeekly    = "WEEKLY_INCLUDED"
	ConsumptionYearly    = "YEARLY_INCLUDED"
	ConsumptionPaidExtra = "PAID_EXTRA"
	ConsumptionPaid      = "PAID"
)

// Bucket identifies one of the quota counters.
type Bucket string

const (
	BucketDaily  Bucket = "daily"
	BucketWeekly Bucket = "weekly"
	BucketYearly Bucket = "yearly"
)

// ConsumptionType returns the purchase consumption type for a bucket.
func (b Bucket) ConsumptionType() string {
	switch b {
	case BucketDaily:
		return ConsumptionDaily
	case BucketWeekly:
		return ConsumptionWeekly
	case BucketYearly:
		return ConsumptionYearly
	}
	return ""
}

// VendorPlan is a subscription plan with free lead allotments.
type VendorPlan struct {
	ID           string          `json:"id"            gorm:"type:char(36);primaryKey"`
	Name         string          `json:"name"          gorm:"type:varchar(128);not null"`
	Price        decimal.Decimal `json:"price"         gorm:"type:decimal(14,2);not null;default:0"`
	DurationDays int             `json:"duration_days" gorm:"not null;default:365"`
	DailyLimit   int             `json:"daily_limit"   gorm:"not null;default:0"`
	WeeklyLimit  int             `json:"weekly_limit"  gorm:"not null;default:0"`
	YearlyLimit  int             `json:"yearly_limit"  gorm:"not null;default:0"`
	IsActive     bool            `json:"is_active"     gorm:"not null;default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName returns the database table name for VendorPlan.
func (VendorPlan) TableName() string { return "vendor_plans" }

// VendorPlanSubscription is a time-bounded association between a vendor and
// a plan. One ACTIVE subscription per vendor is expected but not enforced by
// the schema; readers pick the latest start.
type VendorPlanSubscription struct {
	ID        string     `json:"id"         gorm:"type:char(36);primaryKey"`
	VendorID  string     `json:"vendor_id"  gorm:"type:char(36);not null;index:idx_sub_vendor_status,priority:1"`
	PlanID    string     `json:"plan_id"    gorm:"type:char(36);not null;index"`
	Status    string     `json:"status"     gorm:"type:varchar(16);not null;default:'ACTIVE';index:idx_sub_vendor_status,priority:2"`
	StartDate time.Time  `json:"start_date" gorm:"not null"`
	EndDate   *time.Time `json:"end_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Plan VendorPlan `json:"plan" gorm:"foreignKey:PlanID;references:ID"`
}

// TableName returns the database table name for VendorPlanSubscription.
func (VendorPlanSubscription) TableName() string { return "vendor_plan_subscriptions" }

// ActiveAt reports whether the subscription covers t.
func (s VendorPlanSubscription) ActiveAt(t time.Time) bool {
	if s.Status != SubscriptionActive || t.Before(s.StartDate) {
		return false
	}
	return s.EndDate == nil || t.Before(*s.EndDate)
}

// VendorLeadQuota stores per-vendor limits (synced from the active plan) and
// usage counters. Each counter is tagged with the period it was counted in;
// a counter whose period is not the current one reads as zero.
type VendorLeadQuota struct {
	VendorID     string    `json:"vendor_id"     gorm:"type:char(36);primaryKey"`
	PlanID       *string   `json:"plan_id"       gorm:"type:char(36)"`
	DailyLimit   int       `json:"daily_limit"   gorm:"not null;default:0"`
	WeeklyLimit  int       `json:"weekly_limit"  gorm:"not null;default:0"`
	YearlyLimit  int       `json:"yearly_limit"  gorm:"not null;default:0"`
	DailyUsed    int       `json:"daily_used"    gorm:"not null;default:0"`
	WeeklyUsed   int       `json:"weekly_used"   gorm:"not null;default:0"`
	YearlyUsed   int       `json:"yearly_used"   gorm:"not null;default:0"`
	DailyPeriod  string    `json:"daily_period"  gorm:"type:varchar(16);not null;default:''"`
	WeeklyPeriod string    `json:"weekly_period" gorm:"type:varchar(16);not null;default:''"`
	YearlyPeriod string    `json:"yearly_period" gorm:"type:varchar(16);not null;default:''"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for VendorLeadQuota.
func (VendorLeadQuota) TableName() string { return "vendor_lead_quotas" }

// Limit returns the configured limit for b, never negative.
func (q VendorLeadQuota) Limit(b Bucket) int {
	var n int
	switch b {
	case BucketDaily:
		n = q.DailyLimit
	case BucketWeekly:
		n = q.WeeklyLimit
	case BucketYearly:
		n = q.YearlyLimit
	}
	return nonNegative(n)
}

// StoredUsage returns the raw counter and period stored for b.
func (q VendorLeadQuota) StoredUsage(b Bucket) (used int, period string) {
	switch b {
	case BucketDaily:
		return q.DailyUsed, q.DailyPeriod
	case BucketWeekly:
		return q.WeeklyUsed, q.WeeklyPeriod
	case BucketYearly:
		return q.YearlyUsed, q.YearlyPeriod
	}
	return 0, ""
}

// Used returns the usage of b in the period containing now.
func (q VendorLeadQuota) Used(b Bucket, now time.Time) int {
	used, period := q.StoredUsage(b)
	if period != PeriodKey(b, now) {
		return 0
	}
	return nonNegative(used)
}

// Remaining returns max(0, limit - used) for b at now.
func (q VendorLeadQuota) Remaining(b Bucket, now time.Time) int {
	return nonNegative(q.Limit(b) - q.Used(b, now))
}

// Snapshot returns the remaining counts at now.
func (q VendorLeadQuota) Snapshot(now time.Time) QuotaSnapshot {
	return QuotaSnapshot{
		DailyLimit:      q.Limit(BucketDaily),
		WeeklyLimit:     q.Limit(BucketWeekly),
		YearlyLimit:     q.Limit(BucketYearly),
		DailyRemaining:  q.Remaining(BucketDaily, now),
		WeeklyRemaining: q.Remaining(BucketWeekly, now),
		YearlyRemaining: q.Remaining(BucketYearly, now),
	}
}

// QuotaSnapshot is the client-facing view of a vendor's quota.
type QuotaSnapshot struct {
	DailyLimit      int `json:"daily_limit"`
	WeeklyLimit     int `json:"weekly_limit"`
	YearlyLimit     int `json:"yearly_limit"`
	DailyRemaining  int `json:"daily_remaining"`
	WeeklyRemaining int `json:"weekly_remaining"`
	YearlyRemaining int `json:"yearly_remaining"`
}

// Remaining returns the remaining count for b.
func (s QuotaSnapshot) Remaining(b Bucket) int {
	switch b {
	case BucketDaily:
		return s.DailyRemaining
	case BucketWeekly:
		return s.WeeklyRemaining
	case BucketYearly:
		return s.YearlyRemaining
	}
	return 0
}

// PeriodKey returns the UTC period label of b containing t: "2006-01-02" for
// days, ISO "2006-W01" for weeks (Monday start) and "2006" for years.
func PeriodKey(b Bucket, t time.Time) string {
	t = t.UTC()
	switch b {
	case BucketDaily:
		return t.Format("2006-01-02")
	case BucketWeekly:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case BucketYearly:
		return fmt.Sprintf("%04d", t.Year())
	}
	return ""
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
