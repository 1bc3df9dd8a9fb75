package repo

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Persistence error classes. Callers test with errors.Is after Classify.
var (
	// ErrTransient marks connection-level failures worth retrying later.
	ErrTransient = errors.New("transient persistence error")
	// ErrMissingRelation marks a query against a table or column that does
	// not exist in the connected schema.
	ErrMissingRelation = errors.New("missing relation")
	// ErrDuplicate indicates that a row with the same unique key already exists.
	ErrDuplicate = errors.New("duplicate")
)

// classified wraps the original error with its class so both remain
// reachable through errors.Is / errors.As.
type classified struct {
	class error
	err   error
}

func (c *classified) Error() string   { return c.class.Error() + ": " + c.err.Error() }
func (c *classified) Unwrap() []error { return []error{c.class, c.err} }

// Classify tags err with ErrTransient, ErrMissingRelation or ErrDuplicate when
// it belongs to one of those classes and returns it unchanged otherwise.
// Postgres errors are recognised by SQLSTATE; SQLite (dev/test only) by its
// driver messages.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if class := classOf(err); class != nil {
		return &classified{class: class, err: err}
	}
	return err
}

func classOf(err error) error {
	if errors.Is(err, ErrTransient) || errors.Is(err, ErrMissingRelation) || errors.Is(err, ErrDuplicate) {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return ErrDuplicate
		case pgErr.Code == "42P01", pgErr.Code == "42703":
			return ErrMissingRelation
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "57P01", pgErr.Code == "53300", pgErr.Code == "40001":
			return ErrTransient
		}
		return nil
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return ErrTransient
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return ErrTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrTransient
	}

	low := strings.ToLower(err.Error())
	switch {
	case strings.Contains(low, "unique constraint failed"), strings.Contains(low, "constraint failed: unique"):
		return ErrDuplicate
	case strings.Contains(low, "no such table"), strings.Contains(low, "no such column"):
		return ErrMissingRelation
	case strings.Contains(low, "database is locked"):
		return ErrTransient
	}
	return nil
}

// IsDuplicate reports whether err is a unique-key violation.
func IsDuplicate(err error) bool { return errors.Is(Classify(err), ErrDuplicate) }
