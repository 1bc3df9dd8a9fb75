// Package domain defines the persistence models for users, identity records
// (employees, vendors, buyers), leads, purchases, plans and quotas. These
// types are mapped with GORM and form the core data layer of the marketplace
// backend.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role names stored in users.role.
const (
	RoleUser   = "USER"
	RoleVendor = "VENDOR"
	RoleBuyer  = "BUYER"

	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPERADMIN"
	RoleSales      = "SALES"
	RoleSupport    = "SUPPORT"
	RoleDataEntry  = "DATA_ENTRY"
)

// User is the local account row every credential resolves to. It is created
// lazily on first resolution of a provider token.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - AuthID: subject of the external auth provider, when known.
//   - Email: unique, stored lower-cased.
//   - PasswordHash: bcrypt hash for cookie-session logins (empty for provider-only users).
//   - Role: last reconciled role (USER, VENDOR, BUYER or an employee role).
type User struct {
	ID           string         `json:"id"         gorm:"type:char(36);primaryKey"`
	AuthID       *string        `json:"-"          gorm:"type:varchar(128);uniqueIndex:ux_users_auth_id"`
	Email        string         `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	FullName     string         `json:"full_name"  gorm:"type:varchar(255)"`
	PasswordHash string         `json:"-"          gorm:"type:text"`
	Role         string         `json:"role"       gorm:"type:varchar(32);not null;default:'USER'"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Employee is an internal staff identity (admin, sales, support, ...).
type Employee struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    *string   `json:"user_id"   gorm:"type:char(36);index"`
	Email     string    `json:"email"     gorm:"type:varchar(255);not null;index"`
	FullName  string    `json:"full_name" gorm:"type:varchar(255)"`
	Role      string    `json:"role"      gorm:"type:varchar(32);not null;default:'SUPPORT'"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Employee.
func (Employee) TableName() string { return "employees" }

// Vendor is a seller profile. A vendor owns quota, subscriptions, purchases
// and preferences. Vendors are never hard-deleted by this service.
type Vendor struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      *string   `json:"user_id"      gorm:"type:char(36);index"`
	Email       string    `json:"email"        gorm:"type:varchar(255);not null;index"`
	CompanyName string    `json:"company_name" gorm:"type:varchar(255)"`
	City        string    `json:"city"         gorm:"type:varchar(128)"`
	State       string    `json:"state"        gorm:"type:varchar(128)"`
	IsActive    bool      `json:"is_active"    gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Vendor.
func (Vendor) TableName() string { return "vendors" }

// Buyer is a sourcing-side identity that originates leads.
type Buyer struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      *string   `json:"user_id"      gorm:"type:char(36);index"`
	Email       string    `json:"email"        gorm:"type:varchar(255);not null;index"`
	FullName    string    `json:"full_name"    gorm:"type:varchar(255)"`
	CompanyName string    `json:"company_name" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Buyer.
func (Buyer) TableName() string { return "buyers" }

// VendorPreference holds the marketplace filter a vendor declared. Empty
// lists and absent budget bounds mean "no filtering on that axis".
type VendorPreference struct {
	VendorID   string                      `json:"vendor_id"  gorm:"type:char(36);primaryKey"`
	Categories datatypes.JSONSlice[string] `json:"categories"`
	Cities     datatypes.JSONSlice[string] `json:"cities"`
	States     datatypes.JSONSlice[string] `json:"states"`
	MinBudget  decimal.NullDecimal         `json:"min_budget" gorm:"type:decimal(14,2)"`
	MaxBudget  decimal.NullDecimal         `json:"max_budget" gorm:"type:decimal(14,2)"`
	UpdatedAt  time.Time                   `json:"updated_at"`

	Vendor Vendor `json:"-" gorm:"foreignKey:VendorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for VendorPreference.
func (VendorPreference) TableName() string { return "vendor_preferences" }
