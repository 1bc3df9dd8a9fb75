package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lead statuses. A lead (and each vendor's purchased copy of it) moves
// forward only: ACTIVE → VIEWED → CLOSED, or ACTIVE → CLOSED.
const (
	LeadStatusActive = "ACTIVE"
	LeadStatusViewed = "VIEWED"
	LeadStatusClosed = "CLOSED"
)

// History sources.
const (
	HistorySourcePurchase = "PURCHASE"
	HistorySourceVendor   = "VENDOR"
	HistorySourceAdmin    = "ADMIN"
)

// Lead is a buyer's sourcing request. When VendorID is set the lead is
// directly assigned; otherwise it is a marketplace lead that up to the
// configured purchaser cap may claim. PurchaserCount counts non-direct
// purchasers and is only ever changed by a conditional increment.
type Lead struct {
	ID             string              `json:"id"              gorm:"type:char(36);primaryKey"`
	BuyerID        *string             `json:"buyer_id"        gorm:"type:char(36);index"`
	VendorID       *string             `json:"vendor_id"       gorm:"type:char(36);index"`
	Title          string              `json:"title"           gorm:"type:varchar(255);not null"`
	ProductName    string              `json:"product_name"    gorm:"type:varchar(255)"`
	Category       string              `json:"category"        gorm:"type:varchar(255);index"`
	Description    string              `json:"description"     gorm:"type:text"`
	Quantity       string              `json:"quantity"        gorm:"type:varchar(64)"`
	City           string              `json:"city"            gorm:"type:varchar(128)"`
	State          string              `json:"state"           gorm:"type:varchar(128)"`
	Budget         decimal.NullDecimal `json:"budget"          gorm:"type:decimal(14,2)"`
	Price          decimal.Decimal     `json:"price"           gorm:"type:decimal(14,2);not null;default:0"`
	Status         string              `json:"status"          gorm:"type:varchar(16);not null;default:'ACTIVE';index"`
	PurchaserCount int                 `json:"purchaser_count" gorm:"not null;default:0"`
	ContactName    string              `json:"-"               gorm:"type:varchar(255)"`
	ContactPhone   string              `json:"-"               gorm:"type:varchar(32)"`
	ContactEmail   string              `json:"-"               gorm:"type:varchar(255)"`
	CreatedAt      time.Time           `json:"created_at"      gorm:"index"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// TableName returns the database table name for Lead.
func (Lead) TableName() string { return "leads" }

// IsMarketplace reports whether the lead is unassigned.
func (l Lead) IsMarketplace() bool { return l.VendorID == nil || *l.VendorID == "" }

// AssignedTo reports whether the lead is directly assigned to vendorID.
func (l Lead) AssignedTo(vendorID string) bool {
	return l.VendorID != nil && *l.VendorID == vendorID
}

// LeadPurchase records that a vendor claimed a lead. There is at most one row
// per (vendor, lead); LeadStatus tracks the vendor's own progress on it.
type LeadPurchase struct {
	ID              string          `json:"id"               gorm:"type:char(36);primaryKey"`
	VendorID        string          `json:"vendor_id"        gorm:"type:char(36);not null;uniqueIndex:ux_purchase_vendor_lead,priority:1"`
	LeadID          string          `json:"lead_id"          gorm:"type:char(36);not null;index;uniqueIndex:ux_purchase_vendor_lead,priority:2"`
	ConsumptionType string          `json:"consumption_type" gorm:"type:varchar(32);not null"`
	Amount          decimal.Decimal `json:"amount"           gorm:"type:decimal(14,2);not null;default:0"`
	LeadStatus      string          `json:"lead_status"      gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	PurchasedAt     time.Time       `json:"purchased_at"     gorm:"not null;index"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Lead Lead `json:"lead,omitempty" gorm:"foreignKey:LeadID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for LeadPurchase.
func (LeadPurchase) TableName() string { return "lead_purchases" }

// LeadStatusHistory is the append-only log of lead status changes.
type LeadStatusHistory struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	LeadID     string    `json:"lead_id"     gorm:"type:char(36);not null;index"`
	VendorID   *string   `json:"vendor_id"   gorm:"type:char(36);index"`
	FromStatus string    `json:"from_status" gorm:"type:varchar(16)"`
	ToStatus   string    `json:"to_status"   gorm:"type:varchar(16);not null"`
	Source     string    `json:"source"      gorm:"type:varchar(16);not null"`
	Note       string    `json:"note"        gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for LeadStatusHistory.
func (LeadStatusHistory) TableName() string { return "lead_status_history" }

// CanTransition reports whether a lead status may move from one value to another.
func CanTransition(from, to string) bool {
	switch from {
	case LeadStatusActive:
		return to == LeadStatusViewed || to == LeadStatusClosed
	case LeadStatusViewed:
		return to == LeadStatusClosed
	}
	return false
}

// ValidLeadStatus reports whether s is a known lead status.
func ValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusActive, LeadStatusViewed, LeadStatusClosed:
		return true
	}
	return false
}
