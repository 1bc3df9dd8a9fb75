// Package services – LeadService
//
// This file implements the vendor-facing lead use-cases: listing purchased
// leads, browsing the marketplace through the vendor's preference filter,
// moving a purchased lead through its status lifecycle and maintaining the
// preferences themselves.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/marketplace"
	"github.com/tbourn/go-trademart-backend/internal/repo"
	"github.com/tbourn/go-trademart-backend/internal/search"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LeadService provides vendor lead listing, marketplace browsing, status
// updates and preference management.
type LeadService struct {
	DB           *gorm.DB
	Caps         repo.Capabilities
	PurchaserCap int

	// CandidateLimit bounds how many marketplace rows are read before filtering.
	CandidateLimit int

	validate *validator.Validate
}

// NewLeadService constructs a LeadService with a cap of five purchasers and
// a candidate window of 500 leads.
func NewLeadService(db *gorm.DB, caps repo.Capabilities) *LeadService {
	return &LeadService{
		DB:             db,
		Caps:           caps,
		PurchaserCap:   5,
		CandidateLimit: 500,
		validate:       newPreferencesValidator(),
	}
}

// ListPurchasedPage returns a page of the vendor's purchases, newest first.
// An empty status matches every status.
func (s *LeadService) ListPurchasedPage(ctx context.Context, vendorID, status string, page, pageSize int) ([]domain.LeadPurchase, int64, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "ListPurchasedPage",
		trace.WithAttributes(
			attribute.String("vendor.id", vendorID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if status != "" && !domain.ValidLeadStatus(status) {
		return nil, 0, ErrInvalidStatus
	}
	if !s.Caps.LeadPurchases {
		return nil, 0, ErrFeatureUnavailable
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountPurchases(ctx, s.DB, vendorID, status)
	if err != nil {
		return nil, 0, persistErr(err)
	}
	if total == 0 {
		return []domain.LeadPurchase{}, 0, nil
	}
	items, err := repo.ListPurchasesPage(ctx, s.DB, vendorID, status, offset, pageSize)
	if err != nil {
		return nil, 0, persistErr(err)
	}
	return items, total, nil
}

// PurchasedStats returns the purchase count and latest change time used for ETags.
func (s *LeadService) PurchasedStats(ctx context.Context, vendorID string) (int64, *time.Time, error) {
	n, at, err := repo.PurchasesStats(ctx, s.DB, vendorID)
	return n, at, persistErr(err)
}

// Marketplace returns the unassigned leads vendorID may still buy, narrowed
// by the vendor's saved preferences. A non-empty query further keeps only
// leads whose text shares terms with it, best match first.
func (s *LeadService) Marketplace(ctx context.Context, vendorID, query string, limit int) ([]domain.Lead, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "Marketplace",
		trace.WithAttributes(
			attribute.String("vendor.id", vendorID),
			attribute.String("query", query),
		),
	)
	defer span.End()

	if !s.Caps.LeadPurchases {
		return nil, ErrFeatureUnavailable
	}
	candidates, err := repo.ListMarketplaceCandidates(ctx, s.DB, vendorID, s.PurchaserCap, s.CandidateLimit)
	if err != nil {
		return nil, persistErr(err)
	}

	pref, err := s.Preferences(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	leads := marketplace.Filter(candidates, marketplace.FromVendorPreference(pref))
	span.SetAttributes(attribute.Int("candidates", len(candidates)), attribute.Int("matched", len(leads)))

	if q := strings.TrimSpace(query); q != "" {
		leads = rankByQuery(leads, q)
	}
	if limit > 0 && len(leads) > limit {
		leads = leads[:limit]
	}
	return leads, nil
}

func rankByQuery(leads []domain.Lead, q string) []domain.Lead {
	docs := make([]search.Document, len(leads))
	byID := make(map[string]domain.Lead, len(leads))
	for i, l := range leads {
		docs[i] = search.Document{
			ID:   l.ID,
			Text: strings.Join([]string{l.Title, l.ProductName, l.Category, l.Description}, " "),
		}
		byID[l.ID] = l
	}
	hits := search.NewIndex(docs).TopK(q, 0)
	out := make([]domain.Lead, 0, len(hits))
	for _, h := range hits {
		out = append(out, byID[h.ID])
	}
	return out
}

// UpdateStatus moves the vendor's purchased copy of leadID to status and
// records the change in the history log.
func (s *LeadService) UpdateStatus(ctx context.Context, vendorID, leadID, status string) (*domain.LeadPurchase, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "UpdateStatus",
		trace.WithAttributes(
			attribute.String("vendor.id", vendorID),
			attribute.String("lead.id", leadID),
			attribute.String("status", status),
		),
	)
	defer span.End()

	status = strings.ToUpper(strings.TrimSpace(status))
	if !domain.ValidLeadStatus(status) {
		return nil, ErrInvalidStatus
	}
	if !s.Caps.LeadPurchases {
		return nil, ErrFeatureUnavailable
	}

	var out *domain.LeadPurchase
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetPurchase(ctx, tx, vendorID, leadID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPurchaseNotFound
			}
			return err
		}
		if !domain.CanTransition(p.LeadStatus, status) {
			return ErrInvalidTransition
		}
		ok, err := repo.UpdatePurchaseStatus(ctx, tx, vendorID, leadID, p.LeadStatus, status)
		if err != nil {
			return err
		}
		if !ok {
			// Someone else moved it first; the transition was validated against stale state.
			return ErrInvalidTransition
		}
		if s.Caps.LeadStatusHistory {
			vid := vendorID
			if err := repo.AppendHistory(ctx, tx, &domain.LeadStatusHistory{
				LeadID:     leadID,
				VendorID:   &vid,
				FromStatus: p.LeadStatus,
				ToStatus:   status,
				Source:     domain.HistorySourceVendor,
			}); err != nil {
				return err
			}
		}
		out, err = repo.GetPurchaseByID(ctx, tx, p.ID, vendorID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrPurchaseNotFound) || errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		return nil, persistErr(err)
	}
	return out, nil
}

// Preferences returns the vendor's saved preferences, or nil when none were
// saved or the preferences table is absent.
func (s *LeadService) Preferences(ctx context.Context, vendorID string) (*domain.VendorPreference, error) {
	if !s.Caps.VendorPreferences {
		return nil, nil
	}
	p, err := repo.GetVendorPreference(ctx, s.DB, vendorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, persistErr(err)
	}
	return p, nil
}

// PreferencesInput is the client payload for SavePreferences.
type PreferencesInput struct {
	Categories []string         `json:"categories" validate:"max=50,dive,required,max=128"`
	Cities     []string         `json:"cities"     validate:"max=100,dive,required,max=128"`
	States     []string         `json:"states"     validate:"max=40,dive,required,max=128"`
	MinBudget  *decimal.Decimal `json:"min_budget"`
	MaxBudget  *decimal.Decimal `json:"max_budget"`
}

func newPreferencesValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(PreferencesInput)
		if in.MinBudget != nil && in.MinBudget.IsNegative() {
			sl.ReportError(in.MinBudget, "MinBudget", "min_budget", "gte", "0")
		}
		if in.MaxBudget != nil && in.MaxBudget.IsNegative() {
			sl.ReportError(in.MaxBudget, "MaxBudget", "max_budget", "gte", "0")
		}
		if in.MinBudget != nil && in.MaxBudget != nil && in.MaxBudget.LessThan(*in.MinBudget) {
			sl.ReportError(in.MaxBudget, "MaxBudget", "max_budget", "gtefield", "MinBudget")
		}
	}, PreferencesInput{})
	return v
}

// SavePreferences validates in and replaces the vendor's preferences.
func (s *LeadService) SavePreferences(ctx context.Context, vendorID string, in PreferencesInput) (*domain.VendorPreference, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "SavePreferences", trace.WithAttributes(attribute.String("vendor.id", vendorID)))
	defer span.End()

	in.Categories = trimAll(in.Categories)
	in.Cities = trimAll(in.Cities)
	in.States = trimAll(in.States)

	v := s.validate
	if v == nil {
		v = newPreferencesValidator()
	}
	if err := v.Struct(in); err != nil {
		return nil, errors.Join(ErrInvalidPreferences, err)
	}
	if !s.Caps.VendorPreferences {
		return nil, ErrFeatureUnavailable
	}
	if _, err := repo.GetVendor(ctx, s.DB, vendorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, persistErr(err)
	}

	p := &domain.VendorPreference{
		VendorID:   vendorID,
		Categories: in.Categories,
		Cities:     in.Cities,
		States:     in.States,
	}
	if in.MinBudget != nil {
		p.MinBudget = decimal.NewNullDecimal(*in.MinBudget)
	}
	if in.MaxBudget != nil {
		p.MaxBudget = decimal.NewNullDecimal(*in.MaxBudget)
	}
	if err := repo.UpsertVendorPreference(ctx, s.DB, p); err != nil {
		return nil, persistErr(err)
	}
	return repo.GetVendorPreference(ctx, s.DB, vendorID)
}

// trimAll trims each entry, keeping blanks so the validator can reject them.
func trimAll(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
