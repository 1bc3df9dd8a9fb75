// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides lookups and upserts for the local users
// table and the employee, vendor and buyer identity tables.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetUser fetches a user by ID, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByAuthID fetches a user by provider subject, or ErrNotFound.
func FindUserByAuthID(ctx context.Context, db *gorm.DB, authID string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("auth_id = ?", authID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByEmail fetches a user by normalized e-mail, or ErrNotFound.
func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. Unique violations on auth_id or email surface
// as duplicate errors for the caller to re-read.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	return db.WithContext(ctx).Create(u).Error
}

// UpdateUserFields applies a partial update to user id.
func UpdateUserFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// FindEmployee returns the active employee row linked to userID or, failing
// that, carrying email. ErrNotFound when neither matches.
func FindEmployee(ctx context.Context, db *gorm.DB, userID, email string) (*domain.Employee, error) {
	var e domain.Employee
	if err := findIdentity(ctx, db.Where("is_active = ?", true), userID, email, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// FindVendorIdentity returns the vendor linked to userID or carrying email.
func FindVendorIdentity(ctx context.Context, db *gorm.DB, userID, email string) (*domain.Vendor, error) {
	var v domain.Vendor
	if err := findIdentity(ctx, db, userID, email, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FindBuyer returns the buyer linked to userID or carrying email.
func FindBuyer(ctx context.Context, db *gorm.DB, userID, email string) (*domain.Buyer, error) {
	var b domain.Buyer
	if err := findIdentity(ctx, db, userID, email, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// findIdentity looks up by user_id first, then by e-mail; a linked row
// always wins over an e-mail match.
func findIdentity(ctx context.Context, db *gorm.DB, userID, email string, dest any) error {
	if userID != "" {
		err := db.WithContext(ctx).Where("user_id = ?", userID).First(dest).Error
		if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	email = NormalizeEmail(email)
	if email == "" {
		return gorm.ErrRecordNotFound
	}
	return db.WithContext(ctx).Where("LOWER(email) = ?", email).Order("created_at ASC").First(dest).Error
}

// LinkIdentity back-fills user_id on an identity row whose link is missing.
// model is one of &domain.Employee{}, &domain.Vendor{}, &domain.Buyer{}.
func LinkIdentity(ctx context.Context, db *gorm.DB, model any, id, userID string) error {
	return db.WithContext(ctx).
		Model(model).
		Where("id = ? AND (user_id IS NULL OR user_id = '')", id).
		Updates(map[string]any{"user_id": userID, "updated_at": time.Now().UTC()}).Error
}
