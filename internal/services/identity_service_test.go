package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/auth"
	"github.com/tbourn/go-trademart-backend/internal/config"
	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/repo"
)

const providerSecret = "provider-secret"

func newIdentityService(t *testing.T, db *gorm.DB) *IdentityService {
	t.Helper()
	pv, err := auth.NewProviderVerifier(context.Background(), config.AuthProviderConfig{JWTSecret: providerSecret, Leeway: time.Second})
	if err != nil {
		t.Fatalf("NewProviderVerifier: %v", err)
	}
	sm, err := auth.NewSessionManager("session-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return &IdentityService{DB: db, Provider: pv, Sessions: sm}
}

func providerToken(t *testing.T, sub, email string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"name":  "Test User",
		"exp":   time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(providerSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestResolve_NoCredentials(t *testing.T) {
	s := newIdentityService(t, newTestDB(t))
	if _, err := s.Resolve(context.Background(), Credentials{}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := s.Resolve(context.Background(), Credentials{Bearer: "garbage"}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for a bad bearer, got %v", err)
	}
	if _, err := s.Resolve(context.Background(), Credentials{Session: "garbage"}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for a bad session, got %v", err)
	}
}

func TestResolve_BearerCreatesUserAndPlainRole(t *testing.T) {
	db := newTestDB(t)
	s := newIdentityService(t, db)
	ctx := context.Background()

	id, err := s.Resolve(ctx, Credentials{Bearer: providerToken(t, "sub-1", "New@Example.com")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.Kind != domain.IdentityPlainUser || id.Role() != domain.RoleUser {
		t.Fatalf("expected plain user, got %v %s", id.Kind, id.Role())
	}
	if id.User.Email != "new@example.com" || id.User.AuthID == nil || *id.User.AuthID != "sub-1" {
		t.Fatalf("unexpected user %+v", id.User)
	}

	again, err := s.Resolve(ctx, Credentials{Bearer: providerToken(t, "sub-1", "new@example.com")})
	if err != nil || again.User.ID != id.User.ID {
		t.Fatalf("second resolve must reuse the user: %+v %v", again, err)
	}
	if n := countRows(t, db, &domain.User{}, "1 = 1"); n != 1 {
		t.Fatalf("expected one user row, got %d", n)
	}
}

func TestResolve_EmployeeWinsOverVendor(t *testing.T) {
	db := newTestDB(t)
	s := newIdentityService(t, db)
	ctx := context.Background()

	if err := db.Create(&domain.Vendor{ID: "v1", Email: "both@example.com", IsActive: true}).Error; err != nil {
		t.Fatalf("seed vendor: %v", err)
	}
	if err := db.Create(&domain.Buyer{ID: "b1", Email: "both@example.com"}).Error; err != nil {
		t.Fatalf("seed buyer: %v", err)
	}
	if err := db.Create(&domain.Employee{ID: "e1", Email: "BOTH@example.com", Role: domain.RoleAdmin, IsActive: true}).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}

	id, err := s.Resolve(ctx, Credentials{Bearer: providerToken(t, "sub-2", "both@example.com")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.Kind != domain.IdentityEmployee || id.Role() != domain.RoleAdmin || id.Vendor != nil || id.Buyer != nil {
		t.Fatalf("expected the employee variant, got %+v", id)
	}
	u, _ := repo.GetUser(ctx, db, id.User.ID)
	if u.Role != domain.RoleAdmin {
		t.Fatalf("users.role = %q, want ADMIN", u.Role)
	}
	var e domain.Employee
	db.First(&e, "id = ?", "e1")
	if e.UserID == nil || *e.UserID != id.User.ID {
		t.Fatalf("employee link not back-filled: %+v", e)
	}

	// Deactivating the employee falls back to the vendor identity.
	db.Model(&domain.Employee{}).Where("id = ?", "e1").Update("is_active", false)
	id, err = s.Resolve(ctx, Credentials{Bearer: providerToken(t, "sub-2", "both@example.com")})
	if err != nil || id.Kind != domain.IdentityVendor || id.Vendor.ID != "v1" {
		t.Fatalf("expected the vendor variant, got %+v %v", id, err)
	}
	if u, _ := repo.GetUser(ctx, db, id.User.ID); u.Role != domain.RoleVendor {
		t.Fatalf("users.role = %q, want VENDOR", u.Role)
	}
}

func TestResolve_ExistingEmailGetsSubjectLinked(t *testing.T) {
	db := newTestDB(t)
	s := newIdentityService(t, db)
	ctx := context.Background()
	if err := db.Create(&domain.User{ID: "u1", Email: "old@example.com", Role: domain.RoleUser}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := db.Create(&domain.Buyer{ID: "b1", Email: "old@example.com"}).Error; err != nil {
		t.Fatalf("seed buyer: %v", err)
	}

	id, err := s.Resolve(ctx, Credentials{Bearer: providerToken(t, "sub-3", "old@example.com")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.User.ID != "u1" || id.Kind != domain.IdentityBuyer {
		t.Fatalf("unexpected identity %+v", id)
	}
	u, _ := repo.FindUserByAuthID(ctx, db, "sub-3")
	if u == nil || u.ID != "u1" {
		t.Fatalf("auth_id not linked")
	}
}

func TestResolve_BearerWinsOverSession(t *testing.T) {
	db := newTestDB(t)
	s := newIdentityService(t, db)
	ctx := context.Background()
	if err := db.Create(&domain.User{ID: "cookie-user", Email: "cookie@example.com"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	session, _, err := s.Sessions.Issue("cookie-user", "cookie@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := s.Resolve(ctx, Credentials{Session: session})
	if err != nil || id.User.ID != "cookie-user" {
		t.Fatalf("session resolve: %+v %v", id, err)
	}
	id, err = s.Resolve(ctx, Credentials{Session: session, Bearer: providerToken(t, "sub-4", "bearer@example.com")})
	if err != nil || id.User.Email != "bearer@example.com" {
		t.Fatalf("bearer should win: %+v %v", id, err)
	}

	// A valid session for a deleted user is unauthenticated.
	db.Delete(&domain.User{}, "id = ?", "cookie-user")
	if _, err := s.Resolve(ctx, Credentials{Session: session}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	s := newIdentityService(t, db)
	ctx := context.Background()

	hash, err := auth.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	uid := "u-login"
	if err := db.Create(&domain.User{ID: uid, Email: "login@example.com", PasswordHash: hash}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := db.Create(&domain.Vendor{ID: "v-login", UserID: &uid, Email: "login@example.com", IsActive: true}).Error; err != nil {
		t.Fatalf("seed vendor: %v", err)
	}

	for _, c := range []struct{ email, pw string }{
		{"login@example.com", "wrong"},
		{"nobody@example.com", "hunter22"},
		{"", ""},
	} {
		if _, _, _, err := s.Login(ctx, c.email, c.pw); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Login(%q): expected ErrInvalidCredentials, got %v", c.email, err)
		}
	}

	id, token, exp, err := s.Login(ctx, " Login@Example.com ", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id.Kind != domain.IdentityVendor || token == "" || exp.Before(time.Now()) {
		t.Fatalf("unexpected login result: %+v %q %v", id, token, exp)
	}
	resolved, err := s.Resolve(ctx, Credentials{Session: token})
	if err != nil || resolved.User.ID != uid {
		t.Fatalf("session from Login must resolve: %+v %v", resolved, err)
	}
}
