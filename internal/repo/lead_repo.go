// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for leads,
// lead purchases and the lead status history.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - When a row is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Conditional updates report whether a row matched instead of failing,
//     so callers can distinguish a lost race from a database error.
//   - Other DB errors are propagated raw; services run them through Classify.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetLead fetches a lead by ID, or ErrNotFound.
func GetLead(ctx context.Context, db *gorm.DB, id string) (*domain.Lead, error) {
	var l domain.Lead
	if err := db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLead inserts a lead, assigning an ID and ACTIVE status when missing.
func CreateLead(ctx context.Context, db *gorm.DB, l *domain.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = domain.LeadStatusActive
	}
	return db.WithContext(ctx).Create(l).Error
}

// ListMarketplaceCandidates returns unassigned, non-closed leads that still
// have room below cap and that vendorID has not purchased, newest first.
// The caller applies the vendor's preference filter on the result.
func ListMarketplaceCandidates(ctx context.Context, db *gorm.DB, vendorID string, cap, limit int) ([]domain.Lead, error) {
	var out []domain.Lead
	purchased := db.Model(&domain.LeadPurchase{}).Select("lead_id").Where("vendor_id = ?", vendorID)
	q := db.WithContext(ctx).
		Where("(vendor_id IS NULL OR vendor_id = '')").
		Where("status <> ?", domain.LeadStatusClosed).
		Where("purchaser_count < ?", cap).
		Where("id NOT IN (?)", purchased).
		Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// IncrementPurchaserCount bumps the marketplace purchaser counter only while
// it is below cap. It reports false when the cap had already been reached
// (or the lead vanished) so the caller can reject the purchase.
func IncrementPurchaserCount(ctx context.Context, db *gorm.DB, leadID string, cap int) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ? AND purchaser_count < ?", leadID, cap).
		Updates(map[string]any{
			"purchaser_count": gorm.Expr("purchaser_count + 1"),
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetPurchase returns vendorID's purchase of leadID with its lead, or ErrNotFound.
func GetPurchase(ctx context.Context, db *gorm.DB, vendorID, leadID string) (*domain.LeadPurchase, error) {
	var p domain.LeadPurchase
	err := db.WithContext(ctx).
		Preload("Lead").
		Where("vendor_id = ? AND lead_id = ?", vendorID, leadID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPurchaseByID returns a purchase owned by vendorID, or ErrNotFound.
func GetPurchaseByID(ctx context.Context, db *gorm.DB, id, vendorID string) (*domain.LeadPurchase, error) {
	var p domain.LeadPurchase
	err := db.WithContext(ctx).
		Preload("Lead").
		Where("id = ? AND vendor_id = ?", id, vendorID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePurchase inserts a purchase row. A second purchase of the same lead
// by the same vendor violates ux_purchase_vendor_lead.
func CreatePurchase(ctx context.Context, db *gorm.DB, p *domain.LeadPurchase) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.LeadStatus == "" {
		p.LeadStatus = domain.LeadStatusActive
	}
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = now
	}
	p.UpdatedAt = now
	return db.WithContext(ctx).Omit("Lead").Create(p).Error
}

// CountPurchases returns the number of leads vendorID has purchased. A
// non-empty status counts only purchases in that status.
func CountPurchases(ctx context.Context, db *gorm.DB, vendorID, status string) (int64, error) {
	var total int64
	q := db.WithContext(ctx).
		Model(&domain.LeadPurchase{}).
		Where("vendor_id = ?", vendorID)
	if status != "" {
		q = q.Where("lead_status = ?", status)
	}
	err := q.Count(&total).Error
	return total, err
}

// ListPurchasesPage returns a page of vendorID's purchases with their leads
// preloaded, most recent first. An empty status matches every status.
func ListPurchasesPage(ctx context.Context, db *gorm.DB, vendorID, status string, offset, limit int) ([]domain.LeadPurchase, error) {
	var out []domain.LeadPurchase
	q := db.WithContext(ctx).
		Preload("Lead").
		Where("vendor_id = ?", vendorID)
	if status != "" {
		q = q.Where("lead_status = ?", status)
	}
	err := q.Order("purchased_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdatePurchaseStatus moves vendorID's copy of leadID from one status to
// another. It reports false when the stored status no longer equals from.
func UpdatePurchaseStatus(ctx context.Context, db *gorm.DB, vendorID, leadID, from, to string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.LeadPurchase{}).
		Where("vendor_id = ? AND lead_id = ? AND lead_status = ?", vendorID, leadID, from).
		Updates(map[string]any{"lead_status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AppendHistory adds one row to the lead status history.
func AppendHistory(ctx context.Context, db *gorm.DB, h *domain.LeadStatusHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(h).Error
}

// ListHistory returns the history of leadID in insertion order.
func ListHistory(ctx context.Context, db *gorm.DB, leadID string) ([]domain.LeadStatusHistory, error) {
	var out []domain.LeadStatusHistory
	err := db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
