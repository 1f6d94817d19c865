package repository

import (
	"context"

	"github.com/garnizeh/frota/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Getters return (nil, nil) when the row does not exist. Writes that break a
// uniqueness rule return an *apperr.Error of kind Conflict naming the field.

type AccountRepo interface {
	// CreateAccount inserts the account, filling ID, Created and Updated.
	CreateAccount(ctx context.Context, a *models.Account) error
	FindAccountByID(ctx context.Context, id string) (*models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// FindAccountByTaxID matches either cpf or cnpj.
	FindAccountByTaxID(ctx context.Context, taxID string) (*models.Account, error)
	FindAccountByCPF(ctx context.Context, cpf string) (*models.Account, error)
	FindAccountByCNPJ(ctx context.Context, cnpj string) (*models.Account, error)
	// FindCredentialsByEmail is the only read that returns PasswordHash.
	FindCredentialsByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateAccount(ctx context.Context, id string, u models.AccountUpdate) error
	// DeleteAccount removes the account and, by cascade, its profile.
	DeleteAccount(ctx context.Context, id string) error
	// LoadProfile attaches the profile matching a.Role.
	LoadProfile(ctx context.Context, a *models.Account) error
}

type AdminRepo interface {
	CreateAdmin(ctx context.Context, p *models.Admin) error
	GetAdmin(ctx context.Context, id string) (*models.Account, error)
	GetAdminByAccount(ctx context.Context, accountID string) (*models.Account, error)
	ListAdmins(ctx context.Context, p models.PageParams) ([]models.Account, error)
	CountAdmins(ctx context.Context) (int64, error)
	UpdateAdmin(ctx context.Context, id string, u models.AdminUpdate) error
}

type CompanyRepo interface {
	CreateCompany(ctx context.Context, p *models.Company) error
	GetCompany(ctx context.Context, id string) (*models.Account, error)
	GetCompanyByAccount(ctx context.Context, accountID string) (*models.Account, error)
	ListCompanies(ctx context.Context, p models.PageParams) ([]models.Account, error)
	CountCompanies(ctx context.Context) (int64, error)
	UpdateCompany(ctx context.Context, id string, u models.CompanyUpdate) error
}

// Filter narrows operator, driver and vehicle listings. Empty fields match
// everything.
type Filter struct {
	CompanyID string
	DriverID  string
}

type OperatorRepo interface {
	CreateOperator(ctx context.Context, p *models.Operator) error
	GetOperator(ctx context.Context, id string) (*models.Account, error)
	GetOperatorByAccount(ctx context.Context, accountID string) (*models.Account, error)
	ListOperators(ctx context.Context, f Filter, p models.PageParams) ([]models.Account, error)
	CountOperators(ctx context.Context, f Filter) (int64, error)
	UpdateOperator(ctx context.Context, id string, u models.OperatorUpdate) error
}

type DriverRepo interface {
	CreateDriver(ctx context.Context, p *models.Driver) error
	GetDriver(ctx context.Context, id string) (*models.Account, error)
	GetDriverByAccount(ctx context.Context, accountID string) (*models.Account, error)
	FindDriverByCNH(ctx context.Context, cnh string) (*models.Driver, error)
	FindDriverByPublicToken(ctx context.Context, token string) (*models.PublicDriver, error)
	ListDrivers(ctx context.Context, f Filter, p models.PageParams) ([]models.Account, error)
	CountDrivers(ctx context.Context, f Filter) (int64, error)
	UpdateDriver(ctx context.Context, id string, u models.DriverUpdate) error
}

type VehicleRepo interface {
	CreateVehicle(ctx context.Context, v *models.Vehicle) error
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, f Filter, p models.PageParams) ([]models.Vehicle, error)
	CountVehicles(ctx context.Context, f Filter) (int64, error)
	UpdateVehicle(ctx context.Context, id string, u models.VehicleUpdate) error
	DeleteVehicle(ctx context.Context, id string) error
	// AssignVehicle links the vehicle to the driver, first releasing any
	// vehicle the driver already holds.
	AssignVehicle(ctx context.Context, vehicleID, driverID string) error
	// UnassignDriverVehicle clears driver_id on the driver's vehicle, if any.
	UnassignDriverVehicle(ctx context.Context, driverID string) error
}

// Store is the full identity store. InTx runs fn against a Store bound to a
// single transaction; fn's error rolls everything back.
type Store interface {
	AccountRepo
	AdminRepo
	CompanyRepo
	OperatorRepo
	DriverRepo
	VehicleRepo

	InTx(ctx context.Context, fn func(Store) error) error
}
