package repo

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestClassify_PostgresSQLState(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"23505", ErrDuplicate},
		{"42P01", ErrMissingRelation},
		{"42703", ErrMissingRelation},
		{"08006", ErrTransient},
		{"57P01", ErrTransient},
		{"40001", ErrTransient},
	}
	for _, c := range cases {
		err := fmt.Errorf("query: %w", &pgconn.PgError{Code: c.code, Message: "boom"})
		got := Classify(err)
		if !errors.Is(got, c.want) {
			t.Fatalf("code %s: expected %v, got %v", c.code, c.want, got)
		}
		var pgErr *pgconn.PgError
		if !errors.As(got, &pgErr) {
			t.Fatalf("code %s: original error must stay reachable", c.code)
		}
	}

	other := &pgconn.PgError{Code: "22001"}
	if got := Classify(other); got != error(other) {
		t.Fatalf("unclassified error must be returned as-is, got %v", got)
	}
}

func TestClassify_DriverAndNetworkErrors(t *testing.T) {
	if !errors.Is(Classify(driver.ErrBadConn), ErrTransient) {
		t.Fatalf("ErrBadConn must be transient")
	}
	if !errors.Is(Classify(context.DeadlineExceeded), ErrTransient) {
		t.Fatalf("deadline must be transient")
	}
	if !errors.Is(Classify(gorm.ErrDuplicatedKey), ErrDuplicate) {
		t.Fatalf("gorm duplicate must map to ErrDuplicate")
	}
	if Classify(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	if got := Classify(ErrNotFound); got != ErrNotFound {
		t.Fatalf("not found must pass through, got %v", got)
	}
}

func TestClassify_IsIdempotent(t *testing.T) {
	once := Classify(driver.ErrBadConn)
	twice := Classify(once)
	if once != twice {
		t.Fatalf("classifying twice must not re-wrap")
	}
}

func TestClassify_SQLiteMissingTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	_, err := GetLead(context.Background(), db, "l1")
	if !errors.Is(Classify(err), ErrMissingRelation) {
		t.Fatalf("expected ErrMissingRelation for missing table, got %v", err)
	}
}
