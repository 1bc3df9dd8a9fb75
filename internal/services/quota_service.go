// Package services – QuotaService
//
// This file implements the lead purchase resolver. Given a vendor and a lead
// it decides whether the claim is covered by the vendor's plan quota or must
// be paid, takes one unit from the chosen bucket and records the purchase.
//
// Concurrency: the quota decrement is a single conditional UPDATE on the
// counter and period the resolver last observed. When another request wins,
// the update matches no row and the resolver re-reads and retries, up to
// MaxRetries times. The marketplace purchaser cap and the one-purchase-per-
// vendor rule are enforced by the database (conditional increment, unique
// index) inside the same transaction, so a lost race rolls back the decrement.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Mode selects how a purchase is paid for.
type Mode string

const (
	// ModeAuto takes the first bucket with room: daily, weekly, then yearly.
	ModeAuto Mode = "AUTO"
	// ModeUseWeekly skips the daily bucket: weekly, then yearly.
	ModeUseWeekly Mode = "USE_WEEKLY"
	// ModeBuyExtra buys the lead outside the plan allotment.
	ModeBuyExtra Mode = "BUY_EXTRA"
	// ModePaid is a plain paid purchase.
	ModePaid Mode = "PAID"
)

// CodeQuotaExhausted is the business code of a refused quota purchase.
const CodeQuotaExhausted = "QUOTA_EXHAUSTED"

// ParseMode validates a client-supplied mode. Empty means AUTO.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeUseWeekly, ModeBuyExtra, ModePaid:
		return m, nil
	}
	return "", ErrInvalidMode
}

// buckets returns the quota buckets tried for m, in order. Paid modes use none.
func (m Mode) buckets() []domain.Bucket {
	switch m {
	case ModeAuto:
		return []domain.Bucket{domain.BucketDaily, domain.BucketWeekly, domain.BucketYearly}
	case ModeUseWeekly:
		return []domain.Bucket{domain.BucketWeekly, domain.BucketYearly}
	}
	return nil
}

func (m Mode) paidConsumption() string {
	if m == ModeBuyExtra {
		return domain.ConsumptionPaidExtra
	}
	return domain.ConsumptionPaid
}

// PurchaseResult is the outcome of Consume. A refused quota purchase is a
// result with Success=false and Code=QUOTA_EXHAUSTED, not an error.
type PurchaseResult struct {
	Success          bool
	Code             string
	ExistingPurchase bool
	ConsumptionType  string
	Purchase         *domain.LeadPurchase
	Quota            domain.QuotaSnapshot
	RequiredModes    []Mode
}

// QuotaService resolves lead purchases against vendor plan quotas.
type QuotaService struct {
	DB           *gorm.DB
	Caps         repo.Capabilities
	PurchaserCap int
	MaxRetries   int

	// Now is the clock used for quota periods; defaults to time.Now.
	Now func() time.Time

	// Log receives operational warnings; defaults to the global logger.
	Log zerolog.Logger
}

// NewQuotaService constructs a QuotaService with the default cap of five
// marketplace purchasers and five optimistic retries.
func NewQuotaService(db *gorm.DB, caps repo.Capabilities) *QuotaService {
	return &QuotaService{
		DB:           db,
		Caps:         caps,
		PurchaserCap: 5,
		MaxRetries:   5,
		Now:          time.Now,
		Log:          log.With().Str("component", "quota").Logger(),
	}
}

func (s *QuotaService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// errQuotaRace signals that the conditional decrement matched no row.
var errQuotaRace = errors.New("quota changed concurrently")

// Consume claims leadID for vendorID using mode. price is recorded on paid
// purchases; a zero price falls back to the lead's list price.
func (s *QuotaService) Consume(ctx context.Context, vendorID, leadID string, mode Mode, price decimal.Decimal) (*PurchaseResult, error) {
	tr := otel.Tracer("services/QuotaService")
	ctx, span := tr.Start(ctx, "Consume",
		trace.WithAttributes(
			attribute.String("vendor.id", vendorID),
			attribute.String("lead.id", leadID),
			attribute.String("mode", string(mode)),
		),
	)
	defer span.End()

	if _, err := ParseMode(string(mode)); err != nil || mode == "" {
		return nil, ErrInvalidMode
	}
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if !s.Caps.LeadPurchases {
		return nil, ErrFeatureUnavailable
	}

	vendor, err := repo.GetVendor(ctx, s.DB, vendorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, persistErr(err)
	}
	lead, err := repo.GetLead(ctx, s.DB, leadID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, persistErr(err)
	}

	if res, err := s.existing(ctx, vendorID, leadID); res != nil || err != nil {
		return res, err
	}
	if !s.available(lead, vendorID) {
		return nil, ErrLeadUnavailable
	}

	q, err := s.syncQuota(ctx, vendorID, s.now())
	if err != nil {
		return nil, persistErr(err)
	}

	maxRetries := s.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	for attempt := 0; attempt < maxRetries; attempt++ {
		now := s.now()

		var bucket domain.Bucket
		consumption := mode.paidConsumption()
		if buckets := mode.buckets(); buckets != nil {
			var ok bool
			if bucket, ok = pickBucket(q, buckets, now); !ok {
				quotaExhausted.WithLabelValues(string(mode)).Inc()
				return &PurchaseResult{
					Code:          CodeQuotaExhausted,
					Quota:         q.Snapshot(now),
					RequiredModes: []Mode{ModeBuyExtra, ModePaid},
				}, nil
			}
			consumption = bucket.ConsumptionType()
		}

		amount := decimal.Zero
		if bucket == "" {
			amount = price
			if amount.IsZero() {
				amount = lead.Price
			}
		}

		p, err := s.commit(ctx, vendor, lead, q, bucket, consumption, amount, now)
		switch {
		case err == nil:
			p.Lead = *lead
			leadPurchases.WithLabelValues(consumption).Inc()
			span.SetAttributes(attribute.String("consumption_type", consumption), attribute.Int("attempts", attempt+1))
			fresh, qerr := repo.GetQuota(ctx, s.DB, vendorID)
			if qerr != nil {
				return nil, persistErr(qerr)
			}
			return &PurchaseResult{
				Success:         true,
				ConsumptionType: consumption,
				Purchase:        p,
				Quota:           fresh.Snapshot(now),
			}, nil
		case errors.Is(err, errQuotaRace):
			q, err = repo.GetQuota(ctx, s.DB, vendorID)
			if err != nil {
				return nil, persistErr(err)
			}
			continue
		case errors.Is(err, ErrLeadUnavailable):
			return nil, err
		case repo.IsDuplicate(err):
			// A concurrent request for the same (vendor, lead) committed first.
			if res, xerr := s.existing(ctx, vendorID, leadID); res != nil || xerr != nil {
				return res, xerr
			}
			return nil, persistErr(err)
		default:
			return nil, persistErr(err)
		}
	}

	s.Log.Warn().
		Str("vendor_id", vendorID).
		Str("lead_id", leadID).
		Int("retries", maxRetries).
		Msg("quota decrement kept losing races")
	return nil, ErrQuotaContention
}

// Snapshot returns the vendor's current quota, syncing limits to the active plan.
func (s *QuotaService) Snapshot(ctx context.Context, vendorID string) (domain.QuotaSnapshot, error) {
	tr := otel.Tracer("services/QuotaService")
	ctx, span := tr.Start(ctx, "Snapshot", trace.WithAttributes(attribute.String("vendor.id", vendorID)))
	defer span.End()

	if _, err := repo.GetVendor(ctx, s.DB, vendorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.QuotaSnapshot{}, ErrVendorNotFound
		}
		return domain.QuotaSnapshot{}, persistErr(err)
	}
	now := s.now()
	q, err := s.syncQuota(ctx, vendorID, now)
	if err != nil {
		return domain.QuotaSnapshot{}, persistErr(err)
	}
	return q.Snapshot(now), nil
}

// existing returns a replay result when vendorID already owns leadID.
func (s *QuotaService) existing(ctx context.Context, vendorID, leadID string) (*PurchaseResult, error) {
	p, err := repo.GetPurchase(ctx, s.DB, vendorID, leadID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, persistErr(err)
	}
	res := &PurchaseResult{
		Success:          true,
		ExistingPurchase: true,
		ConsumptionType:  p.ConsumptionType,
		Purchase:         p,
	}
	if q, err := repo.GetQuota(ctx, s.DB, vendorID); err == nil {
		res.Quota = q.Snapshot(s.now())
	}
	return res, nil
}

// available reports whether vendorID may claim lead at all.
func (s *QuotaService) available(lead *domain.Lead, vendorID string) bool {
	if lead.Status == domain.LeadStatusClosed {
		return false
	}
	if lead.IsMarketplace() {
		return lead.PurchaserCount < s.PurchaserCap
	}
	return lead.AssignedTo(vendorID)
}

// syncQuota loads (creating when missing) the vendor's quota row and aligns
// its limits with the active subscription plan.
func (s *QuotaService) syncQuota(ctx context.Context, vendorID string, now time.Time) (*domain.VendorLeadQuota, error) {
	q, err := repo.EnsureQuota(ctx, s.DB, vendorID)
	if err != nil {
		return nil, err
	}
	if !s.Caps.Subscriptions {
		return q, nil
	}

	var plan *domain.VendorPlan
	sub, err := repo.ActiveSubscription(ctx, s.DB, vendorID, now)
	switch {
	case err == nil:
		plan = &sub.Plan
	case errors.Is(err, repo.ErrNotFound):
	default:
		return nil, err
	}

	if limitsMatch(q, plan) {
		return q, nil
	}
	if err := repo.SyncQuotaLimits(ctx, s.DB, vendorID, plan); err != nil {
		return nil, err
	}
	return repo.GetQuota(ctx, s.DB, vendorID)
}

func limitsMatch(q *domain.VendorLeadQuota, plan *domain.VendorPlan) bool {
	if plan == nil {
		return q.PlanID == nil && q.DailyLimit == 0 && q.WeeklyLimit == 0 && q.YearlyLimit == 0
	}
	return q.PlanID != nil && *q.PlanID == plan.ID &&
		q.DailyLimit == plan.DailyLimit &&
		q.WeeklyLimit == plan.WeeklyLimit &&
		q.YearlyLimit == plan.YearlyLimit
}

func pickBucket(q *domain.VendorLeadQuota, buckets []domain.Bucket, now time.Time) (domain.Bucket, bool) {
	for _, b := range buckets {
		if q.Remaining(b, now) > 0 {
			return b, true
		}
	}
	return "", false
}

// commit performs every write of a purchase in one transaction.
func (s *QuotaService) commit(ctx context.Context, vendor *domain.Vendor, lead *domain.Lead, q *domain.VendorLeadQuota,
	bucket domain.Bucket, consumption string, amount decimal.Decimal, now time.Time,
) (*domain.LeadPurchase, error) {
	p := &domain.LeadPurchase{
		VendorID:        vendor.ID,
		LeadID:          lead.ID,
		ConsumptionType: consumption,
		Amount:          amount,
		LeadStatus:      domain.LeadStatusActive,
		PurchasedAt:     now,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exhausted := false
		if bucket != "" {
			used, period := q.StoredUsage(bucket)
			ok, err := repo.ConsumeQuotaBucket(ctx, tx, vendor.ID, bucket, used, period, now)
			if err != nil {
				return err
			}
			if !ok {
				return errQuotaRace
			}
			exhausted = q.Remaining(bucket, now) == 1
		}

		if lead.IsMarketplace() {
			ok, err := repo.IncrementPurchaserCount(ctx, tx, lead.ID, s.PurchaserCap)
			if err != nil {
				return err
			}
			if !ok {
				return ErrLeadUnavailable
			}
		}

		if err := repo.CreatePurchase(ctx, tx, p); err != nil {
			return err
		}

		if s.Caps.LeadStatusHistory {
			vid := vendor.ID
			if err := repo.AppendHistory(ctx, tx, &domain.LeadStatusHistory{
				LeadID:   lead.ID,
				VendorID: &vid,
				ToStatus: domain.LeadStatusActive,
				Source:   domain.HistorySourcePurchase,
				Note:     consumption,
			}); err != nil {
				return err
			}
		}

		if !s.Caps.Notifications || vendor.UserID == nil || *vendor.UserID == "" {
			return nil
		}
		if _, err := repo.CreateNotification(ctx, tx, &domain.Notification{
			UserID:      *vendor.UserID,
			Type:        domain.NotificationLeadPurchased,
			Title:       "Lead purchased",
			Message:     fmt.Sprintf("You purchased lead %q.", lead.Title),
			ReferenceID: lead.ID,
		}); err != nil {
			return err
		}
		if exhausted {
			key := fmt.Sprintf("quota_exhausted:%s:%s", vendor.ID, domain.PeriodKey(domain.BucketDaily, now))
			if _, err := repo.CreateNotification(ctx, tx, &domain.Notification{
				UserID:   *vendor.UserID,
				Type:     domain.NotificationQuotaExhausted,
				Title:    "Lead quota exhausted",
				Message:  fmt.Sprintf("Your %s lead quota is used up.", bucket),
				DedupKey: &key,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
