package provision

import (
	"context"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/pagination"
	"github.com/garnizeh/frota/internal/policy"
	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

type CreateCompanyInput struct {
	NewAccount
	CNPJ    string
	Address string
	City    string
	State   string
	ZipCode string
	Phone   string
}

type UpdateCompanyInput struct {
	AccountChanges
	CNPJ    *string
	Profile models.CompanyUpdate
}

func (u UpdateCompanyInput) profileEmpty() bool {
	p := u.Profile
	return p.Address == nil && p.City == nil && p.State == nil && p.ZipCode == nil && p.Phone == nil
}

func (s *Service) CreateCompany(ctx context.Context, in CreateCompanyInput) (*models.Account, error) {
	in.normalize()
	// companies carry a cnpj, never a cpf
	in.CPF = nil
	if err := in.check(MinMemberPassword); err != nil {
		return nil, err
	}
	cnpj := trimmed(&in.CNPJ)
	if cnpj == nil || len(*cnpj) < 14 || len(*cnpj) > 18 {
		return nil, apperr.InvalidField("cnpj", "cnpj must have 14 to 18 characters")
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}
	if err := s.ensureTaxIDFree(ctx, "cnpj", cnpj); err != nil {
		return nil, err
	}

	return s.provision(ctx, in.NewAccount, models.RoleCompany, cnpj, func(tx repository.Store, accountID string) error {
		return tx.CreateCompany(ctx, &models.Company{
			AccountID: accountID,
			Address:   in.Address,
			City:      in.City,
			State:     in.State,
			ZipCode:   in.ZipCode,
			Phone:     in.Phone,
		})
	})
}

func (s *Service) GetCompany(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.store.GetCompany(ctx, id)
	return notFoundIfNil(a, err, "company")
}

func (s *Service) GetCompanyByAccount(ctx context.Context, accountID string) (*models.Account, error) {
	a, err := s.store.GetCompanyByAccount(ctx, accountID)
	return notFoundIfNil(a, err, "company")
}

func (s *Service) ListCompanies(ctx context.Context, p models.PageParams) (*models.Page[models.Account], error) {
	return pagination.Fetch(ctx, p, s.store.ListCompanies, s.store.CountCompanies)
}

func (s *Service) UpdateCompany(ctx context.Context, by policy.Actor, id string, in UpdateCompanyInput) (*models.Account, error) {
	current, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanActOnCompany(by, current.Company()); err != nil {
		return nil, err
	}
	in.CPF = nil
	if c := trimmed(in.CNPJ); c != nil && (len(*c) < 14 || len(*c) > 18) {
		return nil, apperr.InvalidField("cnpj", "cnpj must have 14 to 18 characters")
	}
	u, err := s.accountUpdate(in.AccountChanges, in.CNPJ, MinMemberPassword)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if !u.Empty() {
			if err := tx.UpdateAccount(ctx, current.ID, u); err != nil {
				return err
			}
		}
		if !in.profileEmpty() {
			return tx.UpdateCompany(ctx, id, in.Profile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCompany(ctx, id)
}

// RemoveCompany deletes the company account. Operators, drivers and
// vehicles that pointed at it stay, with no company.
func (s *Service) RemoveCompany(ctx context.Context, id string) error {
	current, err := s.GetCompany(ctx, id)
	if err != nil {
		return err
	}
	return s.store.DeleteAccount(ctx, current.ID)
}
