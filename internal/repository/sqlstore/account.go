package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/pkg/models"
)

const accountCols = `a.id, a.name, a.email, a.role, a.active, a.cpf, a.cnpj, a.created, a.updated`

// scanAccount reads accountCols followed by any extra destinations.
func scanAccount(row scanner, extra ...any) (*models.Account, error) {
	var a models.Account
	var cpf, cnpj sql.NullString
	dest := append([]any{&a.ID, &a.Name, &a.Email, &a.Role, &a.Active, &cpf, &cnpj, &a.Created, &a.Updated}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.CPF = stringPtr(cpf)
	a.CNPJ = stringPtr(cnpj)
	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	if a == nil {
		return fmt.Errorf("account is nil")
	}
	if a.ID == "" {
		a.ID = newID()
	}
	ts := now()
	a.Created, a.Updated = ts, ts

	_, err := s.q.Exec(ctx, `INSERT INTO accounts (id, name, email, password_hash, role, active, cpf, cnpj, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, a.PasswordHash, string(a.Role), a.Active, nullString(a.CPF), nullString(a.CNPJ), a.Created, a.Updated)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) findAccount(ctx context.Context, where string, args ...any) (*models.Account, error) {
	row := s.q.QueryRow(ctx, `SELECT `+accountCols+` FROM accounts a WHERE `+where, args...)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (s *Store) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return s.findAccount(ctx, `a.id = ?`, id)
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.findAccount(ctx, `a.email = ?`, email)
}

func (s *Store) FindAccountByTaxID(ctx context.Context, taxID string) (*models.Account, error) {
	return s.findAccount(ctx, `a.cpf = ? OR a.cnpj = ?`, taxID, taxID)
}

func (s *Store) FindAccountByCPF(ctx context.Context, cpf string) (*models.Account, error) {
	return s.findAccount(ctx, `a.cpf = ?`, cpf)
}

func (s *Store) FindAccountByCNPJ(ctx context.Context, cnpj string) (*models.Account, error) {
	return s.findAccount(ctx, `a.cnpj = ?`, cnpj)
}

func (s *Store) FindCredentialsByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.q.QueryRow(ctx, `SELECT `+accountCols+`, a.password_hash FROM accounts a WHERE a.email = ?`, email)
	var hash string
	a, err := scanAccount(row, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find credentials: %w", err)
	}
	a.PasswordHash = hash
	return a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, id string, u models.AccountUpdate) error {
	res, err := s.q.Exec(ctx, `UPDATE accounts SET
		name = COALESCE(?, name),
		email = COALESCE(?, email),
		active = COALESCE(?, active),
		password_hash = COALESCE(?, password_hash),
		cpf = COALESCE(?, cpf),
		cnpj = COALESCE(?, cnpj),
		updated = ?
		WHERE id = ?`,
		deref(u.Name), deref(u.Email), deref(u.Active), deref(u.PasswordHash), deref(u.CPF), deref(u.CNPJ), now(), id)
	if err != nil {
		return classify(err)
	}
	return checkAffected(res, "account")
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	res, err := s.q.Exec(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return classify(err)
	}
	return checkAffected(res, "account")
}

func (s *Store) LoadProfile(ctx context.Context, a *models.Account) error {
	if a == nil {
		return fmt.Errorf("account is nil")
	}

	var full *models.Account
	var err error
	switch a.Role {
	case models.RoleAdmin:
		full, err = s.GetAdminByAccount(ctx, a.ID)
	case models.RoleCompany:
		full, err = s.GetCompanyByAccount(ctx, a.ID)
	case models.RoleOperator:
		full, err = s.GetOperatorByAccount(ctx, a.ID)
	case models.RoleDriver:
		full, err = s.GetDriverByAccount(ctx, a.ID)
	default:
		return fmt.Errorf("unknown role %q", a.Role)
	}
	if err != nil {
		return err
	}
	if full == nil {
		return apperr.NotFound("profile not found")
	}
	a.Profile = full.Profile
	return nil
}
