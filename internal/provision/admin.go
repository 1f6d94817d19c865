package provision

import (
	"context"

	"github.com/garnizeh/frota/internal/pagination"
	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

type CreateAdminInput struct {
	NewAccount
	Region string
}

type UpdateAdminInput struct {
	AccountChanges
	Profile models.AdminUpdate
}

func (s *Service) CreateAdmin(ctx context.Context, in CreateAdminInput) (*models.Account, error) {
	in.normalize()
	if err := in.check(MinAdminPassword); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}
	if err := s.ensureTaxIDFree(ctx, "cpf", in.CPF); err != nil {
		return nil, err
	}

	return s.provision(ctx, in.NewAccount, models.RoleAdmin, nil, func(tx repository.Store, accountID string) error {
		return tx.CreateAdmin(ctx, &models.Admin{AccountID: accountID, Region: in.Region})
	})
}

// EnsureAdmin creates the admin unless an account with that email exists.
// It reports whether a new account was created.
func (s *Service) EnsureAdmin(ctx context.Context, in CreateAdminInput) (bool, error) {
	in.normalize()
	existing, err := s.store.FindAccountByEmail(ctx, in.Email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if _, err := s.CreateAdmin(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) GetAdmin(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.store.GetAdmin(ctx, id)
	return notFoundIfNil(a, err, "admin")
}

func (s *Service) GetAdminByAccount(ctx context.Context, accountID string) (*models.Account, error) {
	a, err := s.store.GetAdminByAccount(ctx, accountID)
	return notFoundIfNil(a, err, "admin")
}

func (s *Service) ListAdmins(ctx context.Context, p models.PageParams) (*models.Page[models.Account], error) {
	return pagination.Fetch(ctx, p, s.store.ListAdmins, s.store.CountAdmins)
}

func (s *Service) UpdateAdmin(ctx context.Context, id string, in UpdateAdminInput) (*models.Account, error) {
	current, err := s.GetAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.accountUpdate(in.AccountChanges, nil, MinAdminPassword)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if !u.Empty() {
			if err := tx.UpdateAccount(ctx, current.ID, u); err != nil {
				return err
			}
		}
		if in.Profile.Region != nil {
			return tx.UpdateAdmin(ctx, id, in.Profile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetAdmin(ctx, id)
}

func (s *Service) RemoveAdmin(ctx context.Context, id string) error {
	current, err := s.GetAdmin(ctx, id)
	if err != nil {
		return err
	}
	return s.store.DeleteAccount(ctx, current.ID)
}
