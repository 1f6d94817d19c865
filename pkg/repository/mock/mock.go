// Package mock wraps a repository.Store so tests can force failures on
// selected writes.
package mock

import (
	"context"

	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

// Store delegates to the embedded store unless an error is set for the
// call. Errors also apply inside InTx.
type Store struct {
	repository.Store

	CreateAccountErr  error
	CreateAdminErr    error
	CreateCompanyErr  error
	CreateOperatorErr error
	CreateDriverErr   error
	CreateVehicleErr  error

	// Calls counts the profile creations that reached the wrapper.
	Calls int
}

func Wrap(s repository.Store) *Store {
	return &Store{Store: s}
}

func (m *Store) bind(s repository.Store) *Store {
	cp := *m
	cp.Store = s
	return &cp
}

func (m *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	return m.Store.InTx(ctx, func(tx repository.Store) error {
		bound := m.bind(tx)
		err := fn(bound)
		m.Calls += bound.Calls
		return err
	})
}

func (m *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	if m.CreateAccountErr != nil {
		return m.CreateAccountErr
	}
	return m.Store.CreateAccount(ctx, a)
}

func (m *Store) CreateAdmin(ctx context.Context, p *models.Admin) error {
	m.Calls++
	if m.CreateAdminErr != nil {
		return m.CreateAdminErr
	}
	return m.Store.CreateAdmin(ctx, p)
}

func (m *Store) CreateCompany(ctx context.Context, p *models.Company) error {
	m.Calls++
	if m.CreateCompanyErr != nil {
		return m.CreateCompanyErr
	}
	return m.Store.CreateCompany(ctx, p)
}

func (m *Store) CreateOperator(ctx context.Context, p *models.Operator) error {
	m.Calls++
	if m.CreateOperatorErr != nil {
		return m.CreateOperatorErr
	}
	return m.Store.CreateOperator(ctx, p)
}

func (m *Store) CreateDriver(ctx context.Context, p *models.Driver) error {
	m.Calls++
	if m.CreateDriverErr != nil {
		return m.CreateDriverErr
	}
	return m.Store.CreateDriver(ctx, p)
}

func (m *Store) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	if m.CreateVehicleErr != nil {
		return m.CreateVehicleErr
	}
	return m.Store.CreateVehicle(ctx, v)
}
