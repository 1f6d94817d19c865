package provision

import (
	"context"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/pagination"
	"github.com/garnizeh/frota/internal/policy"
	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

type CreateOperatorInput struct {
	NewAccount
	Region    string
	CompanyID *string
}

type UpdateOperatorInput struct {
	AccountChanges
	Profile models.OperatorUpdate
}

// CreateOperator provisions an operator. A company caller always attaches
// the operator to itself.
func (s *Service) CreateOperator(ctx context.Context, by policy.Actor, in CreateOperatorInput) (*models.Account, error) {
	in.normalize()
	in.CompanyID = trimmed(in.CompanyID)
	if by.Role == models.RoleCompany && by.CompanyID != "" {
		company := by.CompanyID
		in.CompanyID = &company
	}
	if err := in.check(MinMemberPassword); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}
	if err := s.ensureTaxIDFree(ctx, "cpf", in.CPF); err != nil {
		return nil, err
	}
	if err := s.ensureCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}

	return s.provision(ctx, in.NewAccount, models.RoleOperator, nil, func(tx repository.Store, accountID string) error {
		return tx.CreateOperator(ctx, &models.Operator{AccountID: accountID, Region: in.Region, CompanyID: in.CompanyID})
	})
}

func (s *Service) GetOperator(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.store.GetOperator(ctx, id)
	return notFoundIfNil(a, err, "operator")
}

func (s *Service) ListOperators(ctx context.Context, p models.PageParams) (*models.Page[models.Account], error) {
	return s.listOperators(ctx, repository.Filter{}, p)
}

func (s *Service) ListOperatorsByCompany(ctx context.Context, companyID string, p models.PageParams) (*models.Page[models.Account], error) {
	if companyID == "" {
		return nil, apperr.InvalidField("companyId", "companyId is required")
	}
	return s.listOperators(ctx, repository.Filter{CompanyID: companyID}, p)
}

func (s *Service) listOperators(ctx context.Context, f repository.Filter, p models.PageParams) (*models.Page[models.Account], error) {
	return pagination.Fetch(ctx, p,
		func(ctx context.Context, p models.PageParams) ([]models.Account, error) {
			return s.store.ListOperators(ctx, f, p)
		},
		func(ctx context.Context) (int64, error) {
			return s.store.CountOperators(ctx, f)
		})
}

func (s *Service) UpdateOperator(ctx context.Context, by policy.Actor, id string, in UpdateOperatorInput) (*models.Account, error) {
	current, err := s.GetOperator(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanActOnOperator(by, current.ID, current.Operator()); err != nil {
		return nil, err
	}
	if in.Profile.CompanyID != nil && !by.IsAdmin() {
		return nil, apperr.Forbidden("only an admin can move an operator between companies")
	}
	if err := s.ensureCompany(ctx, in.Profile.CompanyID); err != nil {
		return nil, err
	}
	u, err := s.accountUpdate(in.AccountChanges, nil, MinMemberPassword)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if !u.Empty() {
			if err := tx.UpdateAccount(ctx, current.ID, u); err != nil {
				return err
			}
		}
		if in.Profile.Region != nil || in.Profile.CompanyID != nil {
			return tx.UpdateOperator(ctx, id, in.Profile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOperator(ctx, id)
}

func (s *Service) RemoveOperator(ctx context.Context, by policy.Actor, id string) error {
	current, err := s.GetOperator(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanDeleteOperator(by, current.Operator()); err != nil {
		return err
	}
	return s.store.DeleteAccount(ctx, current.ID)
}
