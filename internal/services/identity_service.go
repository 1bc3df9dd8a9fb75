// Package services – IdentityService
//
// This file implements request identity resolution. A request carries either
// a bearer token from the external auth provider or the locally issued
// session cookie; both end in a row of the local users table, which is then
// matched against the employee, vendor and buyer tables in that priority
// order. Every call re-queries; nothing is cached between requests.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/auth"
	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Credentials are the raw credentials found on a request.
type Credentials struct {
	Bearer  string
	Session string
}

// IdentityService resolves credentials to an Identity and performs
// password logins.
type IdentityService struct {
	DB       *gorm.DB
	Provider *auth.ProviderVerifier
	Sessions *auth.SessionManager
}

// Resolve verifies creds and returns the caller's identity. A bearer token
// wins over a session cookie when both are present. Any verification
// failure yields ErrUnauthenticated.
func (s *IdentityService) Resolve(ctx context.Context, creds Credentials) (*domain.Identity, error) {
	tr := otel.Tracer("services/IdentityService")
	ctx, span := tr.Start(ctx, "Resolve")
	defer span.End()

	var (
		user *domain.User
		err  error
	)
	switch {
	case creds.Bearer != "":
		span.SetAttributes(attribute.String("credential", "bearer"))
		claims, verr := s.Provider.Verify(creds.Bearer)
		if verr != nil {
			return nil, errors.Join(ErrUnauthenticated, verr)
		}
		user, err = s.upsertProviderUser(ctx, claims)
	case creds.Session != "" && s.Sessions != nil:
		span.SetAttributes(attribute.String("credential", "session"))
		claims, verr := s.Sessions.Verify(creds.Session)
		if verr != nil {
			return nil, errors.Join(ErrUnauthenticated, verr)
		}
		user, err = repo.GetUser(ctx, s.DB, claims.Subject)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
	default:
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, persistErr(err)
	}

	id, err := s.identify(ctx, user)
	if err != nil {
		return nil, persistErr(err)
	}
	span.SetAttributes(
		attribute.String("user.id", user.ID),
		attribute.String("identity.kind", id.Kind.String()),
	)
	return id, nil
}

// upsertProviderUser finds the local user of a provider subject, first by
// subject and then by e-mail, creating it when neither matches.
func (s *IdentityService) upsertProviderUser(ctx context.Context, c *auth.ProviderClaims) (*domain.User, error) {
	u, err := repo.FindUserByAuthID(ctx, s.DB, c.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	email := repo.NormalizeEmail(c.Email)
	if email != "" {
		u, err = repo.FindUserByEmail(ctx, s.DB, email)
		switch {
		case err == nil:
			if u.AuthID == nil || *u.AuthID == "" {
				if err := repo.UpdateUserFields(ctx, s.DB, u.ID, map[string]any{"auth_id": c.Subject}); err != nil {
					return nil, err
				}
				sub := c.Subject
				u.AuthID = &sub
			}
			return u, nil
		case !errors.Is(err, repo.ErrNotFound):
			return nil, err
		}
	}
	if email == "" {
		// Without an e-mail there is nothing to key a new account on.
		return nil, ErrUnauthenticated
	}

	sub := c.Subject
	u = &domain.User{AuthID: &sub, Email: email, FullName: c.Name, Role: domain.RoleUser}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if !repo.IsDuplicate(err) {
			return nil, err
		}
		// Lost a concurrent first login; the winner's row is authoritative.
		if u, err = repo.FindUserByAuthID(ctx, s.DB, c.Subject); err == nil {
			return u, nil
		}
		return repo.FindUserByEmail(ctx, s.DB, email)
	}
	return u, nil
}

// identify picks the identity variant of u by priority, back-fills the
// user link on the matched row and reconciles users.role.
func (s *IdentityService) identify(ctx context.Context, u *domain.User) (*domain.Identity, error) {
	id := &domain.Identity{Kind: domain.IdentityPlainUser, User: *u}

	if e, err := repo.FindEmployee(ctx, s.DB, u.ID, u.Email); err == nil {
		id.Kind, id.Employee = domain.IdentityEmployee, e
		if e.UserID == nil {
			if err := repo.LinkIdentity(ctx, s.DB, &domain.Employee{}, e.ID, u.ID); err != nil {
				return nil, err
			}
			e.UserID = &u.ID
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	} else if v, err := repo.FindVendorIdentity(ctx, s.DB, u.ID, u.Email); err == nil {
		id.Kind, id.Vendor = domain.IdentityVendor, v
		if v.UserID == nil {
			if err := repo.LinkIdentity(ctx, s.DB, &domain.Vendor{}, v.ID, u.ID); err != nil {
				return nil, err
			}
			v.UserID = &u.ID
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	} else if b, err := repo.FindBuyer(ctx, s.DB, u.ID, u.Email); err == nil {
		id.Kind, id.Buyer = domain.IdentityBuyer, b
		if b.UserID == nil {
			if err := repo.LinkIdentity(ctx, s.DB, &domain.Buyer{}, b.ID, u.ID); err != nil {
				return nil, err
			}
			b.UserID = &u.ID
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	if role := id.Role(); role != u.Role {
		if err := repo.UpdateUserFields(ctx, s.DB, u.ID, map[string]any{"role": role}); err != nil {
			return nil, err
		}
		log.Debug().Str("user_id", u.ID).Str("from", u.Role).Str("to", role).Msg("user role reconciled")
		id.User.Role = role
	}
	return id, nil
}

// Login checks an e-mail/password pair and issues a session token. Unknown
// e-mails and wrong passwords both yield ErrInvalidCredentials.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*domain.Identity, string, time.Time, error) {
	tr := otel.Tracer("services/IdentityService")
	ctx, span := tr.Start(ctx, "Login", trace.WithAttributes(attribute.Bool("has_email", email != "")))
	defer span.End()

	if email == "" || password == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	u, err := repo.FindUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, persistErr(err)
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	id, err := s.identify(ctx, u)
	if err != nil {
		return nil, "", time.Time{}, persistErr(err)
	}
	token, exp, err := s.Sessions.Issue(u.ID, u.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return id, token, exp, nil
}
