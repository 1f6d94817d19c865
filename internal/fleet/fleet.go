// Package fleet manages the vehicle registry.
package fleet

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/pagination"
	"github.com/garnizeh/frota/internal/policy"
	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

type Service struct {
	store repository.Store
	log   *zap.Logger
}

func New(store repository.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

type CreateVehicleInput struct {
	Plate         string
	Renavam       string
	Brand         string
	Model         string
	Color         string
	Year          string
	Status        models.VehicleStatus
	LicensingDate time.Time
	OwnerName     string
	CompanyID     *string
	DriverID      *string
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Create registers a vehicle. Company and operator callers own it by
// default; a driver caller is assigned to it by default. Non-admin callers
// may only reference their own company and drivers they can act on.
func (s *Service) Create(ctx context.Context, by policy.Actor, in CreateVehicleInput) (*models.Vehicle, error) {
	in.Plate = strings.ToUpper(strings.TrimSpace(in.Plate))
	in.Renavam = strings.TrimSpace(in.Renavam)
	in.CompanyID = optional(in.CompanyID)
	in.DriverID = optional(in.DriverID)

	if in.CompanyID == nil && by.CompanyID != "" && (by.Role == models.RoleCompany || by.Role == models.RoleOperator) {
		company := by.CompanyID
		in.CompanyID = &company
	}
	if in.DriverID == nil && by.Role == models.RoleDriver && by.DriverID != "" {
		driver := by.DriverID
		in.DriverID = &driver
	}
	if err := policy.CanAssignCompany(by, in.CompanyID); err != nil {
		return nil, err
	}

	if in.Plate == "" {
		return nil, apperr.InvalidField("plate", "plate is required")
	}
	if in.Renavam == "" {
		return nil, apperr.InvalidField("renavam", "renavam is required")
	}
	if in.Status == "" {
		in.Status = models.VehicleAvailable
	}
	if !in.Status.Valid() {
		return nil, apperr.InvalidField("status", "unknown vehicle status")
	}
	if in.LicensingDate.IsZero() {
		return nil, apperr.InvalidField("licensingDate", "licensingDate is required")
	}
	if err := s.ensureRefs(ctx, by, in.CompanyID, in.DriverID); err != nil {
		return nil, err
	}

	v := &models.Vehicle{
		Plate:         in.Plate,
		Renavam:       in.Renavam,
		Brand:         in.Brand,
		Model:         in.Model,
		Color:         in.Color,
		Year:          in.Year,
		Status:        in.Status,
		LicensingDate: in.LicensingDate,
		OwnerName:     in.OwnerName,
		CompanyID:     in.CompanyID,
		DriverID:      in.DriverID,
	}
	if err := s.store.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}
	s.log.Info("vehicle registered", zap.String("vehicle_id", v.ID), zap.String("plate", v.Plate))
	return v, nil
}

func (s *Service) ensureRefs(ctx context.Context, by policy.Actor, companyID, driverID *string) error {
	if companyID != nil && *companyID != "" {
		c, err := s.store.GetCompany(ctx, *companyID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFound("company not found")
		}
	}
	if driverID != nil {
		d, err := s.store.GetDriver(ctx, *driverID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.NotFound("driver not found")
		}
		if err := policy.CanActOnDriver(by, d.Driver()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	v, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound("vehicle not found")
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, p models.PageParams) (*models.Page[models.Vehicle], error) {
	return s.list(ctx, repository.Filter{}, p)
}

func (s *Service) ListByCompany(ctx context.Context, companyID string, p models.PageParams) (*models.Page[models.Vehicle], error) {
	if companyID == "" {
		return nil, apperr.InvalidField("companyId", "companyId is required")
	}
	return s.list(ctx, repository.Filter{CompanyID: companyID}, p)
}

func (s *Service) ListByDriver(ctx context.Context, driverID string, p models.PageParams) (*models.Page[models.Vehicle], error) {
	if driverID == "" {
		return nil, apperr.InvalidField("driverId", "driverId is required")
	}
	return s.list(ctx, repository.Filter{DriverID: driverID}, p)
}

func (s *Service) list(ctx context.Context, f repository.Filter, p models.PageParams) (*models.Page[models.Vehicle], error) {
	return pagination.Fetch(ctx, p,
		func(ctx context.Context, p models.PageParams) ([]models.Vehicle, error) {
			return s.store.ListVehicles(ctx, f, p)
		},
		func(ctx context.Context) (int64, error) {
			return s.store.CountVehicles(ctx, f)
		})
}

func (s *Service) Update(ctx context.Context, by policy.Actor, id string, u models.VehicleUpdate) (*models.Vehicle, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanActOnVehicle(by, current); err != nil {
		return nil, err
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, apperr.InvalidField("status", "unknown vehicle status")
	}
	if u.Plate != nil {
		plate := strings.ToUpper(strings.TrimSpace(*u.Plate))
		u.Plate = &plate
	}
	if u.CompanyID != nil && !by.IsAdmin() {
		return nil, apperr.Forbidden("only an admin can move a vehicle between companies")
	}
	if err := s.ensureRefs(ctx, by, u.CompanyID, nil); err != nil {
		return nil, err
	}
	if err := s.store.UpdateVehicle(ctx, id, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Remove(ctx context.Context, by policy.Actor, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanActOnVehicle(by, current); err != nil {
		return err
	}
	return s.store.DeleteVehicle(ctx, id)
}
