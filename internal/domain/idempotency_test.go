// internal/domain/idempotency_test.go
package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestIdempotency_Migration_Indexes_AndInsert(t *testing.T) {
	db := newTestDB(t)

	m := db.Migrator()
	_ = m.DropTable("idempotency")
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	if !m.HasTable(&Idempotency{}) {
		t.Fatalf("expected table %q to exist", Idempotency{}.TableName())
	}
	if !m.HasIndex(&Idempotency{}, "ux_user_scope_key") {
		t.Fatalf("expected composite index ux_user_scope_key to exist")
	}

	now := time.Now().UTC()

	// NOT NULL constraints, checked by behavior.
	assertNullRejected := func(col string) {
		t.Helper()
		vals := []any{"x-" + col, "u1", "lead-1", "k1", "p1", 201, now, now.Add(time.Hour)}
		names := []string{"id", "user_id", "scope", "key", "resource_id", "status", "created_at", "expires_at"}
		for i, name := range names {
			if name == col {
				vals[i] = nil
			}
		}
		err := db.Exec(`INSERT INTO idempotency ("id","user_id","scope","key","resource_id","status","created_at","expires_at")
		                VALUES (?,?,?,?,?,?,?,?)`, vals...).Error
		if err == nil {
			t.Fatalf("expected NOT NULL violation when inserting NULL into %q", col)
		}
	}
	for _, col := range []string{"user_id", "scope", "key", "resource_id", "status", "expires_at"} {
		assertNullRejected(col)
	}

	rec := &Idempotency{
		ID:         "id-1",
		UserID:     "u1",
		Scope:      "lead-1",
		Key:        "k1",
		ResourceID: "p1",
		Status:     201,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("insert valid: %v", err)
	}

	var got Idempotency
	if err := db.First(&got, "id = ?", "id-1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.UserID != "u1" || got.Scope != "lead-1" || got.Key != "k1" || got.ResourceID != "p1" || got.Status != 201 {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.ExpiresAt.Before(now) {
		t.Fatalf("ExpiresAt should be after CreatedAt: %v vs %v", got.ExpiresAt, now)
	}

	// (user_id, scope, key) must be unique.
	err := db.Create(&Idempotency{
		ID: "id-2", UserID: "u1", Scope: "lead-1", Key: "k1", ResourceID: "p2",
		Status: 201, CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour),
	}).Error
	if err == nil {
		t.Fatalf("expected UNIQUE constraint violation on (user_id, scope, key)")
	}

	// Same key under another scope is fine.
	if err := db.Create(&Idempotency{
		ID: "id-3", UserID: "u1", Scope: "lead-2", Key: "k1", ResourceID: "p3",
		Status: 201, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}).Error; err != nil {
		t.Fatalf("insert other scope: %v", err)
	}
}
