package models

// Domain models matching the database schema in db/migrations/*/0001_init.sql

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCompany  Role = "COMPANY"
	RoleOperator Role = "OPERADOR"
	RoleDriver   Role = "MOTORISTA"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCompany, RoleOperator, RoleDriver:
		return true
	}
	return false
}

// Account is the login identity shared by every role. Exactly one Profile
// variant is attached and its Role always equals Account.Role.
type Account struct {
	ID           string  `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Email        string  `json:"email" db:"email"`
	PasswordHash string  `json:"-" db:"password_hash"`
	Role         Role    `json:"role" db:"role"`
	Active       bool    `json:"active" db:"active"`
	CPF          *string `json:"cpf,omitempty" db:"cpf"`
	CNPJ         *string `json:"cnpj,omitempty" db:"cnpj"`
	Created      int64   `json:"created" db:"created"`
	Updated      int64   `json:"updated" db:"updated"`
	Profile      Profile `json:"profile,omitempty"`
}

// Admin returns the admin profile, or nil for other roles.
func (a *Account) Admin() *Admin {
	p, _ := a.Profile.(*Admin)
	return p
}

func (a *Account) Company() *Company {
	p, _ := a.Profile.(*Company)
	return p
}

func (a *Account) Operator() *Operator {
	p, _ := a.Profile.(*Operator)
	return p
}

func (a *Account) Driver() *Driver {
	p, _ := a.Profile.(*Driver)
	return p
}

// ProfileMatches reports whether the attached profile variant agrees with
// the account role.
func (a *Account) ProfileMatches() bool {
	return a.Profile != nil && a.Profile.Role() == a.Role
}

// AccountUpdate carries the account-level fields of a partial update. Nil
// fields are left untouched.
type AccountUpdate struct {
	Name         *string
	Email        *string
	Active       *bool
	PasswordHash *string
	CPF          *string
	CNPJ         *string
}

func (u AccountUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Active == nil && u.PasswordHash == nil && u.CPF == nil && u.CNPJ == nil
}
