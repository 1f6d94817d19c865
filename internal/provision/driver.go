package provision

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/pagination"
	"github.com/garnizeh/frota/internal/policy"
	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

type CreateDriverInput struct {
	NewAccount
	CNH            string
	CompanyID      *string
	Status         models.DriverStatus
	ToxicologyExam *time.Time
	// Photo is optional raw image bytes.
	Photo []byte
}

type UpdateDriverInput struct {
	AccountChanges
	Profile models.DriverUpdate
	// CurrentVehicleID assigns that vehicle to the driver.
	CurrentVehicleID *string
	// UnassignVehicle releases whatever vehicle the driver holds.
	UnassignVehicle bool
	Photo           []byte
}

func (u UpdateDriverInput) profileEmpty() bool {
	p := u.Profile
	return p.CNH == nil && p.Status == nil && p.PhotoURL == nil && p.ToxicologyExam == nil && p.CompanyID == nil
}

// CreateDriver provisions a driver. Company and operator callers attach the
// driver to their own company when none is given and may not name another.
func (s *Service) CreateDriver(ctx context.Context, by policy.Actor, in CreateDriverInput) (*models.Account, error) {
	in.normalize()
	in.CompanyID = trimmed(in.CompanyID)
	if in.CompanyID == nil && by.CompanyID != "" && (by.Role == models.RoleCompany || by.Role == models.RoleOperator) {
		company := by.CompanyID
		in.CompanyID = &company
	}
	if err := policy.CanAssignCompany(by, in.CompanyID); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.DriverPending
	}
	if !in.Status.Valid() {
		return nil, apperr.InvalidField("status", "unknown driver status")
	}
	if err := in.check(MinMemberPassword); err != nil {
		return nil, err
	}
	if in.CNH == "" {
		return nil, apperr.InvalidField("cnh", "cnh is required")
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}
	if err := s.ensureTaxIDFree(ctx, "cpf", in.CPF); err != nil {
		return nil, err
	}
	if err := s.ensureCNHFree(ctx, in.CNH); err != nil {
		return nil, err
	}
	if err := s.ensureCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}

	photoURL := s.uploadPhoto(ctx, in.Photo)

	return s.provision(ctx, in.NewAccount, models.RoleDriver, nil, func(tx repository.Store, accountID string) error {
		return tx.CreateDriver(ctx, &models.Driver{
			AccountID:      accountID,
			CNH:            in.CNH,
			Status:         in.Status,
			PhotoURL:       photoURL,
			ToxicologyExam: in.ToxicologyExam,
			CompanyID:      in.CompanyID,
		})
	})
}

func (s *Service) GetDriver(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.store.GetDriver(ctx, id)
	return notFoundIfNil(a, err, "driver")
}

func (s *Service) ListDrivers(ctx context.Context, p models.PageParams) (*models.Page[models.Account], error) {
	return s.listDrivers(ctx, repository.Filter{}, p)
}

func (s *Service) ListDriversByCompany(ctx context.Context, companyID string, p models.PageParams) (*models.Page[models.Account], error) {
	if companyID == "" {
		return nil, apperr.InvalidField("companyId", "companyId is required")
	}
	return s.listDrivers(ctx, repository.Filter{CompanyID: companyID}, p)
}

func (s *Service) listDrivers(ctx context.Context, f repository.Filter, p models.PageParams) (*models.Page[models.Account], error) {
	return pagination.Fetch(ctx, p,
		func(ctx context.Context, p models.PageParams) ([]models.Account, error) {
			return s.store.ListDrivers(ctx, f, p)
		},
		func(ctx context.Context) (int64, error) {
			return s.store.CountDrivers(ctx, f)
		})
}

// FindByPublicToken resolves the anonymous share link of a driver.
func (s *Service) FindByPublicToken(ctx context.Context, token string) (*models.PublicDriver, error) {
	d, err := s.store.FindDriverByPublicToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("invalid or expired link")
	}
	return d, nil
}

func (s *Service) UpdateDriver(ctx context.Context, by policy.Actor, id string, in UpdateDriverInput) (*models.Account, error) {
	current, err := s.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	d := current.Driver()
	if err := policy.CanActOnDriver(by, d); err != nil {
		return nil, err
	}

	if by.Role == models.RoleDriver && (in.Profile.Status != nil || in.Profile.CompanyID != nil) {
		return nil, apperr.Forbidden("drivers cannot change their own status or company")
	}
	if err := policy.CanAssignCompany(by, in.Profile.CompanyID); err != nil {
		return nil, err
	}
	if st := in.Profile.Status; st != nil && !d.Status.CanTransition(*st) {
		return nil, apperr.InvalidField("status", "cannot move driver from "+string(d.Status)+" to "+string(*st))
	}
	if in.CurrentVehicleID != nil && in.UnassignVehicle {
		return nil, apperr.InvalidField("currentVehicleId", "cannot assign and unassign a vehicle at once")
	}
	if err := s.ensureCompany(ctx, in.Profile.CompanyID); err != nil {
		return nil, err
	}
	if in.CurrentVehicleID != nil {
		v, err := s.store.GetVehicle(ctx, *in.CurrentVehicleID)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, apperr.NotFound("vehicle not found")
		}
		if err := policy.CanAssignVehicle(by, d, v); err != nil {
			return nil, err
		}
	}
	if url := s.uploadPhoto(ctx, in.Photo); url != "" {
		in.Profile.PhotoURL = &url
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
		if !in.profileEmpty() {
			if err := tx.UpdateDriver(ctx, id, in.Profile); err != nil {
				return err
			}
		}
		switch {
		case in.CurrentVehicleID != nil:
			return tx.AssignVehicle(ctx, *in.CurrentVehicleID, id)
		case in.UnassignVehicle:
			return tx.UnassignDriverVehicle(ctx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if in.Profile.Status != nil && *in.Profile.Status != d.Status {
		s.log.Info("driver status changed", zap.String("driver_id", id), zap.String("from", string(d.Status)), zap.String("to", string(*in.Profile.Status)))
	}
	return s.GetDriver(ctx, id)
}

// RemoveDriver deletes the driver's account. Its vehicle, if any, stays
// with no driver.
func (s *Service) RemoveDriver(ctx context.Context, by policy.Actor, id string) error {
	current, err := s.GetDriver(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanDeleteDriver(by, current.Driver()); err != nil {
		return err
	}
	return s.store.DeleteAccount(ctx, current.ID)
}
