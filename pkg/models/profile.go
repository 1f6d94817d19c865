package models

import "time"

// Profile is the role-specific half of an Account. The set of variants is
// closed: Admin, Company, Operator and Driver.
type Profile interface {
	Role() Role
	ProfileID() string
	profile()
}

type Admin struct {
	ID        string `json:"id" db:"id"`
	AccountID string `json:"accountId" db:"account_id"`
	Region    string `json:"region" db:"region"`
}

func (*Admin) Role() Role          { return RoleAdmin }
func (p *Admin) ProfileID() string { return p.ID }
func (*Admin) profile()            {}

type Company struct {
	ID        string `json:"id" db:"id"`
	AccountID string `json:"accountId" db:"account_id"`
	Address   string `json:"address,omitempty" db:"address"`
	City      string `json:"city,omitempty" db:"city"`
	State     string `json:"state,omitempty" db:"state"`
	ZipCode   string `json:"zipCode,omitempty" db:"zip_code"`
	Phone     string `json:"phone,omitempty" db:"phone"`
}

func (*Company) Role() Role          { return RoleCompany }
func (p *Company) ProfileID() string { return p.ID }
func (*Company) profile()            {}

type Operator struct {
	ID        string  `json:"id" db:"id"`
	AccountID string  `json:"accountId" db:"account_id"`
	Region    string  `json:"region,omitempty" db:"region"`
	CompanyID *string `json:"companyId" db:"company_id"`
}

func (*Operator) Role() Role          { return RoleOperator }
func (p *Operator) ProfileID() string { return p.ID }
func (*Operator) profile()            {}

type DriverStatus string

const (
	DriverPending   DriverStatus = "PENDENTE"
	DriverActive    DriverStatus = "ATIVO"
	DriverInactive  DriverStatus = "INATIVO"
	DriverSuspended DriverStatus = "SUSPENSO"
)

func (s DriverStatus) Valid() bool {
	switch s {
	case DriverPending, DriverActive, DriverInactive, DriverSuspended:
		return true
	}
	return false
}

// CanTransition reports whether a driver may move from s to next. Once a
// driver has left PENDENTE it never returns there; every other move is free.
func (s DriverStatus) CanTransition(next DriverStatus) bool {
	if !next.Valid() {
		return false
	}
	if next == DriverPending {
		return s == DriverPending
	}
	return true
}

type Driver struct {
	ID             string       `json:"id" db:"id"`
	AccountID      string       `json:"accountId" db:"account_id"`
	CNH            string       `json:"cnh" db:"cnh"`
	Status         DriverStatus `json:"status" db:"status"`
	PhotoURL       string       `json:"photoUrl,omitempty" db:"photo_url"`
	ToxicologyExam *time.Time   `json:"toxicologyExam,omitempty" db:"toxicology_exam"`
	PublicToken    string       `json:"publicToken" db:"public_token"`
	CompanyID      *string      `json:"companyId" db:"company_id"`
	// Vehicle is the vehicle currently assigned to the driver, if any.
	Vehicle *Vehicle `json:"vehicle,omitempty"`
}

func (*Driver) Role() Role          { return RoleDriver }
func (p *Driver) ProfileID() string { return p.ID }
func (*Driver) profile()            {}

type AdminUpdate struct {
	Region *string
}

type CompanyUpdate struct {
	Address *string
	City    *string
	State   *string
	ZipCode *string
	Phone   *string
}

type OperatorUpdate struct {
	Region    *string
	CompanyID *string
}

type DriverUpdate struct {
	CNH            *string
	Status         *DriverStatus
	PhotoURL       *string
	ToxicologyExam *time.Time
	CompanyID      *string
}

// PublicDriver is the unauthenticated view resolved from a share token.
type PublicDriver struct {
	Name           string         `json:"name"`
	PhotoURL       string         `json:"photoUrl,omitempty"`
	Status         DriverStatus   `json:"status"`
	CNH            string         `json:"cnh"`
	ToxicologyExam *time.Time     `json:"toxicologyExam,omitempty"`
	CompanyName    string         `json:"companyName,omitempty"`
	Vehicle        *PublicVehicle `json:"vehicle,omitempty"`
}

type PublicVehicle struct {
	Model string `json:"model"`
	Color string `json:"color"`
	Plate string `json:"plate"`
}
