package provision

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/auth"
	"github.com/garnizeh/frota/internal/policy"
	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

// Session is the result of a successful sign-in.
type Session struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	User        *models.Account `json:"user"`
	CompanyID   string          `json:"companyId,omitempty"`
	DriverID    string          `json:"driverId,omitempty"`
}

// ActorFor derives the token subject for an account with its profile
// loaded. The company is resolved from the company profile first, then the
// driver's company, then the operator's company.
func ActorFor(a *models.Account) policy.Actor {
	actor := policy.Actor{AccountID: a.ID, Email: a.Email, Role: a.Role}
	switch p := a.Profile.(type) {
	case *models.Company:
		actor.CompanyID = p.ID
	case *models.Driver:
		actor.DriverID = p.ID
		if p.CompanyID != nil {
			actor.CompanyID = *p.CompanyID
		}
	case *models.Operator:
		if p.CompanyID != nil {
			actor.CompanyID = *p.CompanyID
		}
	}
	return actor
}

const invalidCredentials = "invalid credentials"

func (s *Service) Signin(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acc, err := s.store.FindCredentialsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc == nil || !auth.CheckPassword(acc.PasswordHash, password) {
		s.log.Info("signin rejected", zap.String("email", email))
		return nil, apperr.Unauthorized(invalidCredentials)
	}
	if !acc.Active {
		return nil, apperr.Unauthorized("account is inactive")
	}
	acc.PasswordHash = ""

	if err := s.store.LoadProfile(ctx, acc); err != nil {
		return nil, err
	}

	actor := ActorFor(acc)
	token, claims, err := s.tokens.Issue(actor)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        acc,
		CompanyID:   actor.CompanyID,
		DriverID:    actor.DriverID,
	}, nil
}

// Signout revokes the token until it would have expired.
func (s *Service) Signout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperr.Unauthorized("token has no id")
	}
	until := time.Now().Add(s.tokens.TTL())
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(ctx, claims.ID, until)
}

// Me returns the caller's account with its profile.
func (s *Service) Me(ctx context.Context, accountID string) (*models.Account, error) {
	acc, err := s.store.FindAccountByID(ctx, accountID)
	if acc, err = notFoundIfNil(acc, err, "account"); err != nil {
		return nil, err
	}
	if err := s.store.LoadProfile(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// RegisterInput is public self-registration. Only COMPANY and MOTORISTA
// may sign themselves up.
type RegisterInput struct {
	NewAccount
	Role models.Role
	CNPJ *string
	CNH  *string
}

type Registration struct {
	Message   string `json:"message"`
	AccountID string `json:"userId"`
	Email     string `json:"email"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Registration, error) {
	in.normalize()
	in.CNPJ = trimmed(in.CNPJ)
	in.CNH = trimmed(in.CNH)
	if err := in.check(MinRegisterPassword); err != nil {
		return nil, err
	}
	if in.Role != models.RoleCompany && in.Role != models.RoleDriver {
		return nil, apperr.InvalidField("role", "role must be COMPANY or MOTORISTA")
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	var acc *models.Account
	var err error
	switch in.Role {
	case models.RoleCompany:
		if in.CNPJ == nil {
			return nil, apperr.InvalidField("cnpj", "cnpj is required for companies")
		}
		in.CPF = nil
		if err := s.ensureTaxIDFree(ctx, "cnpj", in.CNPJ); err != nil {
			return nil, err
		}
		acc, err = s.provision(ctx, in.NewAccount, models.RoleCompany, in.CNPJ, func(tx repository.Store, accountID string) error {
			return tx.CreateCompany(ctx, &models.Company{AccountID: accountID})
		})
	case models.RoleDriver:
		if in.CNH == nil {
			return nil, apperr.InvalidField("cnh", "cnh is required for drivers")
		}
		if err := s.ensureTaxIDFree(ctx, "cpf", in.CPF); err != nil {
			return nil, err
		}
		if err := s.ensureCNHFree(ctx, *in.CNH); err != nil {
			return nil, err
		}
		acc, err = s.provision(ctx, in.NewAccount, models.RoleDriver, nil, func(tx repository.Store, accountID string) error {
			return tx.CreateDriver(ctx, &models.Driver{AccountID: accountID, CNH: *in.CNH, Status: models.DriverPending})
		})
	default:
		return nil, apperr.InvalidField("role", "role must be COMPANY or MOTORISTA")
	}
	if err != nil {
		return nil, err
	}

	return &Registration{Message: "account created", AccountID: acc.ID, Email: acc.Email}, nil
}
