package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

// Capabilities records which optional relations exist in the connected
// schema. It is computed once at startup and passed to services, so a
// partially migrated hosted database degrades predictably.
type Capabilities struct {
	LeadPurchases     bool `json:"lead_purchases"`
	LeadStatusHistory bool `json:"lead_status_history"`
	Notifications     bool `json:"notifications"`
	VendorPreferences bool `json:"vendor_preferences"`
	Subscriptions     bool `json:"subscriptions"`
}

// AllCapabilities reports a fully migrated schema.
func AllCapabilities() Capabilities {
	return Capabilities{
		LeadPurchases:     true,
		LeadStatusHistory: true,
		Notifications:     true,
		VendorPreferences: true,
		Subscriptions:     true,
	}
}

// DetectCapabilities probes the schema for the optional tables.
func DetectCapabilities(ctx context.Context, db *gorm.DB) Capabilities {
	m := db.WithContext(ctx).Migrator()
	return Capabilities{
		LeadPurchases:     m.HasTable(&domain.LeadPurchase{}),
		LeadStatusHistory: m.HasTable(&domain.LeadStatusHistory{}),
		Notifications:     m.HasTable(&domain.Notification{}),
		VendorPreferences: m.HasTable(&domain.VendorPreference{}),
		Subscriptions:     m.HasTable(&domain.VendorPlanSubscription{}) && m.HasTable(&domain.VendorPlan{}),
	}
}
