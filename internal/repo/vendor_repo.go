// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for vendors and
// their marketplace preferences.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

// GetVendor fetches a vendor by ID, or ErrNotFound.
func GetVendor(ctx context.Context, db *gorm.DB, id string) (*domain.Vendor, error) {
	var v domain.Vendor
	if err := db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVendor inserts a vendor, assigning an ID when missing.
func CreateVendor(ctx context.Context, db *gorm.DB, v *domain.Vendor) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(v).Error
}

// GetVendorPreference returns the stored preferences of vendorID, or
// ErrNotFound when the vendor never saved any.
func GetVendorPreference(ctx context.Context, db *gorm.DB, vendorID string) (*domain.VendorPreference, error) {
	var p domain.VendorPreference
	if err := db.WithContext(ctx).Where("vendor_id = ?", vendorID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertVendorPreference inserts or fully replaces the preferences row.
func UpsertVendorPreference(ctx context.Context, db *gorm.DB, p *domain.VendorPreference) error {
	p.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).
		Omit("Vendor").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vendor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"categories", "cities", "states", "min_budget", "max_budget", "updated_at"}),
		}).
		Create(p).Error
}
