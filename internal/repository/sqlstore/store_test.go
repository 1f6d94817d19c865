package sqlstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	dbfs "github.com/garnizeh/frota/db"
	"github.com/garnizeh/frota/internal/apperr"
	dbpkg "github.com/garnizeh/frota/internal/db"
	"github.com/garnizeh/frota/internal/repository/sqlstore"
	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

func setupStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, "sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return sqlstore.New(d, nil)
}

func strPtr(s string) *string { return &s }

func newAccount(t *testing.T, s *sqlstore.Store, email string, role models.Role) *models.Account {
	t.Helper()
	a := &models.Account{Name: "n " + email, Email: email, PasswordHash: "hash", Role: role, Active: true}
	if err := s.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount(%s): %v", email, err)
	}
	return a
}

func newCompany(t *testing.T, s *sqlstore.Store, email, cnpj string) *models.Company {
	t.Helper()
	a := &models.Account{Name: "Acme", Email: email, PasswordHash: "hash", Role: models.RoleCompany, Active: true, CNPJ: strPtr(cnpj)}
	if err := s.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	c := &models.Company{AccountID: a.ID, City: "Recife"}
	if err := s.CreateCompany(context.Background(), c); err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}
	return c
}

func newDriver(t *testing.T, s *sqlstore.Store, email, cnh string, companyID *string) *models.Driver {
	t.Helper()
	a := newAccount(t, s, email, models.RoleDriver)
	d := &models.Driver{AccountID: a.ID, CNH: cnh, CompanyID: companyID}
	if err := s.CreateDriver(context.Background(), d); err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}
	return d
}

func newVehicle(t *testing.T, s *sqlstore.Store, plate, renavam string) *models.Vehicle {
	t.Helper()
	v := &models.Vehicle{Plate: plate, Renavam: renavam, Brand: "Fiat", Model: "Uno", Color: "white", Year: "2020", LicensingDate: time.Now(), OwnerName: "Acme"}
	if err := s.CreateVehicle(context.Background(), v); err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	return v
}

func TestAccountCRUD(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	got, err := s.FindAccountByEmail(ctx, "missing@example.com")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing email, got %#v, %v", got, err)
	}

	a := &models.Account{Name: "Alice", Email: "alice@example.com", PasswordHash: "secret-hash", Role: models.RoleAdmin, Active: true, CPF: strPtr("123")}
	if err := s.CreateAccount(ctx, a); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if a.ID == "" || a.Created == 0 {
		t.Fatalf("expected id and timestamps to be filled: %#v", a)
	}

	got, err = s.FindAccountByID(ctx, a.ID)
	if err != nil || got == nil {
		t.Fatalf("FindAccountByID: %#v, %v", got, err)
	}
	if got.PasswordHash != "" {
		t.Fatalf("regular reads must not return the password hash")
	}
	if got.CPF == nil || *got.CPF != "123" {
		t.Fatalf("cpf not persisted: %#v", got.CPF)
	}

	creds, err := s.FindCredentialsByEmail(ctx, "alice@example.com")
	if err != nil || creds == nil || creds.PasswordHash != "secret-hash" {
		t.Fatalf("FindCredentialsByEmail: %#v, %v", creds, err)
	}

	byTax, err := s.FindAccountByTaxID(ctx, "123")
	if err != nil || byTax == nil || byTax.ID != a.ID {
		t.Fatalf("FindAccountByTaxID: %#v, %v", byTax, err)
	}
	if byCPF, err := s.FindAccountByCPF(ctx, "123"); err != nil || byCPF == nil || byCPF.ID != a.ID {
		t.Fatalf("FindAccountByCPF: %#v, %v", byCPF, err)
	}
	if byCNPJ, err := s.FindAccountByCNPJ(ctx, "123"); err != nil || byCNPJ != nil {
		t.Fatalf("cnpj lookup must not match a cpf: %#v, %v", byCNPJ, err)
	}

	inactive := false
	if err := s.UpdateAccount(ctx, a.ID, models.AccountUpdate{Name: strPtr("Alicia"), Active: &inactive}); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	got, _ = s.FindAccountByID(ctx, a.ID)
	if got.Name != "Alicia" || got.Active || got.Email != "alice@example.com" {
		t.Fatalf("partial update applied incorrectly: %#v", got)
	}

	err = s.UpdateAccount(ctx, "nope", models.AccountUpdate{Name: strPtr("x")})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on missing account, got %v", err)
	}

	if err := s.DeleteAccount(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if err := s.DeleteAccount(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestUniqueViolationsAreConflicts(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	newCompany(t, s, "acme@example.com", "12345678000199")
	newDriver(t, s, "d1@example.com", "CNH-1", nil)
	newVehicle(t, s, "ABC1D23", "REN-1")

	tests := []struct {
		name  string
		run   func() error
		field string
	}{
		{"email", func() error {
			return s.CreateAccount(ctx, &models.Account{Name: "x", Email: "acme@example.com", PasswordHash: "h", Role: models.RoleAdmin, Active: true})
		}, "email"},
		{"cnpj", func() error {
			return s.CreateAccount(ctx, &models.Account{Name: "x", Email: "other@example.com", PasswordHash: "h", Role: models.RoleCompany, Active: true, CNPJ: strPtr("12345678000199")})
		}, "cnpj"},
		{"cnh", func() error {
			a := newAccount(t, s, "d2@example.com", models.RoleDriver)
			return s.CreateDriver(ctx, &models.Driver{AccountID: a.ID, CNH: "CNH-1"})
		}, "cnh"},
		{"plate", func() error {
			return s.CreateVehicle(ctx, &models.Vehicle{Plate: "ABC1D23", Renavam: "REN-2", LicensingDate: time.Now()})
		}, "plate"},
		{"renavam", func() error {
			return s.CreateVehicle(ctx, &models.Vehicle{Plate: "XYZ9K87", Renavam: "REN-1", LicensingDate: time.Now()})
		}, "renavam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, apperr.ErrConflict) {
				t.Fatalf("expected conflict, got %v", err)
			}
			var ae *apperr.Error
			if !errors.As(err, &ae) || ae.Field != tt.field {
				t.Fatalf("expected field %q, got %#v", tt.field, ae)
			}
		})
	}
}

func TestDeleteAccountCascadesToProfile(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	d := newDriver(t, s, "d@example.com", "CNH-9", nil)
	if err := s.DeleteAccount(ctx, d.AccountID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	got, err := s.GetDriver(ctx, d.ID)
	if err != nil || got != nil {
		t.Fatalf("driver profile should be gone, got %#v, %v", got, err)
	}
}

func TestDeletedDriverLeavesVehicleUnassigned(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	d := newDriver(t, s, "d@example.com", "CNH-9", nil)
	v := newVehicle(t, s, "ABC1D23", "REN-1")
	if err := s.AssignVehicle(ctx, v.ID, d.ID); err != nil {
		t.Fatalf("AssignVehicle: %v", err)
	}

	acc, err := s.GetDriver(ctx, d.ID)
	if err != nil || acc.Driver().Vehicle == nil || acc.Driver().Vehicle.ID != v.ID {
		t.Fatalf("expected driver to carry its vehicle, got %#v, %v", acc, err)
	}

	if err := s.DeleteAccount(ctx, d.AccountID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	got, err := s.GetVehicle(ctx, v.ID)
	if err != nil || got == nil {
		t.Fatalf("vehicle must survive driver removal: %#v, %v", got, err)
	}
	if got.DriverID != nil {
		t.Fatalf("expected driver_id cleared, got %q", *got.DriverID)
	}
}

func TestAssignVehicleMovesDriverToNewVehicle(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	d := newDriver(t, s, "d@example.com", "CNH-9", nil)
	v1 := newVehicle(t, s, "AAA1A11", "REN-1")
	v2 := newVehicle(t, s, "BBB2B22", "REN-2")

	if err := s.AssignVehicle(ctx, v1.ID, d.ID); err != nil {
		t.Fatalf("assign v1: %v", err)
	}
	if err := s.AssignVehicle(ctx, v2.ID, d.ID); err != nil {
		t.Fatalf("assign v2: %v", err)
	}

	got1, _ := s.GetVehicle(ctx, v1.ID)
	got2, _ := s.GetVehicle(ctx, v2.ID)
	if got1.DriverID != nil {
		t.Fatalf("v1 should have been released")
	}
	if got2.DriverID == nil || *got2.DriverID != d.ID {
		t.Fatalf("v2 should be assigned to the driver")
	}

	if err := s.UnassignDriverVehicle(ctx, d.ID); err != nil {
		t.Fatalf("UnassignDriverVehicle: %v", err)
	}
	got2, _ = s.GetVehicle(ctx, v2.ID)
	if got2.DriverID != nil {
		t.Fatalf("v2 should be unassigned")
	}
}

func TestCompanyRemovalNullifiesReferences(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	c := newCompany(t, s, "acme@example.com", "12345678000199")
	opAcc := newAccount(t, s, "op@example.com", models.RoleOperator)
	op := &models.Operator{AccountID: opAcc.ID, CompanyID: &c.ID}
	if err := s.CreateOperator(ctx, op); err != nil {
		t.Fatalf("CreateOperator: %v", err)
	}
	d := newDriver(t, s, "d@example.com", "CNH-9", &c.ID)

	n, err := s.CountOperators(ctx, repository.Filter{CompanyID: c.ID})
	if err != nil || n != 1 {
		t.Fatalf("expected 1 operator in company, got %d, %v", n, err)
	}

	if err := s.DeleteAccount(ctx, c.AccountID); err != nil {
		t.Fatalf("DeleteAccount(company): %v", err)
	}

	gotOp, err := s.GetOperator(ctx, op.ID)
	if err != nil || gotOp == nil {
		t.Fatalf("operator must survive company removal: %#v, %v", gotOp, err)
	}
	if gotOp.Operator().CompanyID != nil {
		t.Fatalf("operator company should be cleared")
	}
	gotDrv, _ := s.GetDriver(ctx, d.ID)
	if gotDrv.Driver().CompanyID != nil {
		t.Fatalf("driver company should be cleared")
	}
}

func TestListAndCountWithFilter(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	c := newCompany(t, s, "acme@example.com", "12345678000199")
	newDriver(t, s, "a@example.com", "CNH-1", &c.ID)
	newDriver(t, s, "b@example.com", "CNH-2", &c.ID)
	newDriver(t, s, "c@example.com", "CNH-3", nil)

	all, err := s.ListDrivers(ctx, repository.Filter{}, models.PageParams{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListDrivers: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected page of 2, got %d", len(all))
	}

	byCompany, err := s.ListDrivers(ctx, repository.Filter{CompanyID: c.ID}, models.PageParams{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListDrivers(company): %v", err)
	}
	if len(byCompany) != 2 {
		t.Fatalf("expected 2 drivers in company, got %d", len(byCompany))
	}

	total, err := s.CountDrivers(ctx, repository.Filter{})
	if err != nil || total != 3 {
		t.Fatalf("CountDrivers: %d, %v", total, err)
	}
}

func TestFindDriverByPublicToken(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	c := newCompany(t, s, "acme@example.com", "12345678000199")
	d := newDriver(t, s, "d@example.com", "CNH-9", &c.ID)
	v := newVehicle(t, s, "ABC1D23", "REN-1")
	if err := s.AssignVehicle(ctx, v.ID, d.ID); err != nil {
		t.Fatalf("AssignVehicle: %v", err)
	}

	pub, err := s.FindDriverByPublicToken(ctx, d.PublicToken)
	if err != nil || pub == nil {
		t.Fatalf("FindDriverByPublicToken: %#v, %v", pub, err)
	}
	if pub.CNH != "CNH-9" || pub.CompanyName != "Acme" || pub.Status != models.DriverPending {
		t.Fatalf("unexpected public view: %#v", pub)
	}
	if pub.Vehicle == nil || pub.Vehicle.Plate != "ABC1D23" {
		t.Fatalf("expected vehicle in public view: %#v", pub.Vehicle)
	}

	missing, err := s.FindDriverByPublicToken(ctx, "unknown")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for unknown token, got %#v, %v", missing, err)
	}
}

func TestInTxRollsBackBothWrites(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	newDriver(t, s, "first@example.com", "CNH-1", nil)

	err := s.InTx(ctx, func(tx repository.Store) error {
		a := &models.Account{Name: "x", Email: "second@example.com", PasswordHash: "h", Role: models.RoleDriver, Active: true}
		if err := tx.CreateAccount(ctx, a); err != nil {
			return err
		}
		return tx.CreateDriver(ctx, &models.Driver{AccountID: a.ID, CNH: "CNH-1"})
	})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected cnh conflict, got %v", err)
	}

	got, err := s.FindAccountByEmail(ctx, "second@example.com")
	if err != nil || got != nil {
		t.Fatalf("account must not survive a failed profile insert: %#v, %v", got, err)
	}
}

func TestUpdateDriverClearsCompany(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	c := newCompany(t, s, "acme@example.com", "12345678000199")
	d := newDriver(t, s, "d@example.com", "CNH-9", &c.ID)

	active := models.DriverActive
	if err := s.UpdateDriver(ctx, d.ID, models.DriverUpdate{Status: &active, CompanyID: strPtr("")}); err != nil {
		t.Fatalf("UpdateDriver: %v", err)
	}
	got, _ := s.GetDriver(ctx, d.ID)
	if got.Driver().Status != models.DriverActive || got.Driver().CompanyID != nil {
		t.Fatalf("unexpected driver after update: %#v", got.Driver())
	}
	if got.Driver().PublicToken != d.PublicToken {
		t.Fatalf("public token must not change")
	}
}
