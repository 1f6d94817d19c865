// Package policy decides which roles may perform which action on which
// resource, plus the ownership rules that refine a role grant.
package policy

import (
	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/pkg/models"
)

type Resource string

const (
	Admins            Resource = "admins"
	Companies         Resource = "companies"
	Operators         Resource = "operators"
	Drivers           Resource = "drivers"
	Vehicles          Resource = "vehicles"
	VehiclesByCompany Resource = "vehicles-by-company"
	VehiclesByDriver  Resource = "vehicles-by-driver"
)

type Action string

const (
	Create Action = "create"
	List   Action = "list"
	Read   Action = "read"
	Update Action = "update"
	Delete Action = "delete"
)

// Actor is the authenticated caller as carried by its token.
type Actor struct {
	AccountID string
	Email     string
	Role      models.Role
	CompanyID string
	DriverID  string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

const (
	admin    = models.RoleAdmin
	company  = models.RoleCompany
	operator = models.RoleOperator
	driver   = models.RoleDriver
)

func roles(rs ...models.Role) map[models.Role]bool {
	m := make(map[models.Role]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// table lists the non-admin grants; ADMIN is allowed everywhere.
var table = map[Resource]map[Action]map[models.Role]bool{
	Admins: {},
	Companies: {
		Read:   roles(company, operator),
		Update: roles(company),
	},
	Operators: {
		Create: roles(company),
		List:   roles(company, operator),
		Read:   roles(company, operator),
		Update: roles(company, operator),
		Delete: roles(company),
	},
	Drivers: {
		Create: roles(company, operator),
		List:   roles(company, operator),
		Read:   roles(company, operator),
		Update: roles(company, operator, driver),
		Delete: roles(company, driver),
	},
	Vehicles: {
		Create: roles(company, operator, driver),
		Read:   roles(company, operator),
		Update: roles(company, operator, driver),
		Delete: roles(company, driver),
	},
	VehiclesByCompany: {
		List: roles(company, operator),
	},
	VehiclesByDriver: {
		List: roles(company, driver),
	},
}

// Allowed reports whether role may perform action on resource.
func Allowed(role models.Role, resource Resource, action Action) bool {
	if role == models.RoleAdmin {
		return true
	}
	return table[resource][action][role]
}

// Authorize is Allowed returning a Forbidden error on denial.
func Authorize(a Actor, resource Resource, action Action) error {
	if !Allowed(a.Role, resource, action) {
		return apperr.Forbidden("not allowed to " + string(action) + " " + string(resource))
	}
	return nil
}

// CanDeleteDriver: admin, the driver itself, or the company that owns it.
func CanDeleteDriver(a Actor, d *models.Driver) error {
	switch {
	case a.IsAdmin():
		return nil
	case a.Role == models.RoleDriver && d.ID == a.DriverID:
		return nil
	case a.Role == models.RoleCompany && ownedBy(d.CompanyID, a.CompanyID):
		return nil
	}
	return apperr.Forbidden("not allowed to remove this driver")
}

// CanActOnDriver: admin, the driver itself, or the company or one of its
// operators.
func CanActOnDriver(a Actor, d *models.Driver) error {
	switch {
	case a.IsAdmin():
		return nil
	case a.Role == models.RoleDriver && d.ID == a.DriverID:
		return nil
	case (a.Role == models.RoleCompany || a.Role == models.RoleOperator) && ownedBy(d.CompanyID, a.CompanyID):
		return nil
	}
	return apperr.Forbidden("not allowed to change this driver")
}

// CanActOnCompany: admin or the company itself.
func CanActOnCompany(a Actor, c *models.Company) error {
	if a.IsAdmin() || (a.Role == models.RoleCompany && c.ID == a.CompanyID) {
		return nil
	}
	return apperr.Forbidden("not allowed to change this company")
}

// ownedBy reports whether the optional reference points at id.
func ownedBy(ref *string, id string) bool {
	return ref != nil && id != "" && *ref == id
}

// CanActOnOperator: admin, the owning company, or the operator itself.
func CanActOnOperator(a Actor, accountID string, op *models.Operator) error {
	switch {
	case a.IsAdmin():
		return nil
	case a.Role == models.RoleOperator && a.AccountID == accountID:
		return nil
	case a.Role == models.RoleCompany && ownedBy(op.CompanyID, a.CompanyID):
		return nil
	}
	return apperr.Forbidden("not allowed to change this operator")
}

// CanDeleteOperator: admin or the owning company.
func CanDeleteOperator(a Actor, op *models.Operator) error {
	if a.IsAdmin() || (a.Role == models.RoleCompany && ownedBy(op.CompanyID, a.CompanyID)) {
		return nil
	}
	return apperr.Forbidden("not allowed to remove this operator")
}

// CanActOnVehicle: admin, the owning company or its operators, or the
// driver the vehicle is assigned to.
func CanActOnVehicle(a Actor, v *models.Vehicle) error {
	switch {
	case a.IsAdmin():
		return nil
	case a.Role == models.RoleDriver && ownedBy(v.DriverID, a.DriverID):
		return nil
	case (a.Role == models.RoleCompany || a.Role == models.RoleOperator) && ownedBy(v.CompanyID, a.CompanyID):
		return nil
	}
	return apperr.Forbidden("not allowed to change this vehicle")
}

// CanAssignCompany: admin may reference any company; everyone else only
// their own.
func CanAssignCompany(a Actor, companyID *string) error {
	if a.IsAdmin() || companyID == nil || ownedBy(companyID, a.CompanyID) {
		return nil
	}
	return apperr.Forbidden("not allowed to use another company")
}

// CanAssignVehicle: admin, or a caller who may act on the vehicle when the
// vehicle is free or already the driver's and sits in the driver's company.
func CanAssignVehicle(a Actor, d *models.Driver, v *models.Vehicle) error {
	if a.IsAdmin() {
		return nil
	}
	if err := CanActOnVehicle(a, v); err != nil {
		return err
	}
	if v.DriverID != nil && *v.DriverID != d.ID {
		return apperr.Forbidden("vehicle is assigned to another driver")
	}
	if !sameRef(v.CompanyID, d.CompanyID) {
		return apperr.Forbidden("vehicle belongs to another company")
	}
	return nil
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
