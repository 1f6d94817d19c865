package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/frota/pkg/models"
)

const companySelect = `SELECT ` + accountCols + `, p.id, p.address, p.city, p.state, p.zip_code, p.phone FROM companies p JOIN accounts a ON a.id = p.account_id`

func scanCompany(row scanner) (*models.Account, error) {
	var p models.Company
	a, err := scanAccount(row, &p.ID, &p.Address, &p.City, &p.State, &p.ZipCode, &p.Phone)
	if err != nil {
		return nil, err
	}
	p.AccountID = a.ID
	a.Profile = &p
	return a, nil
}

func (s *Store) CreateCompany(ctx context.Context, p *models.Company) error {
	if p == nil {
		return fmt.Errorf("company is nil")
	}
	if p.ID == "" {
		p.ID = newID()
	}
	_, err := s.q.Exec(ctx, `INSERT INTO companies (id, account_id, address, city, state, zip_code, phone) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AccountID, p.Address, p.City, p.State, p.ZipCode, p.Phone)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) getCompany(ctx context.Context, where string, arg string) (*models.Account, error) {
	a, err := scanCompany(s.q.QueryRow(ctx, companySelect+` WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return a, nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (*models.Account, error) {
	return s.getCompany(ctx, `p.id = ?`, id)
}

func (s *Store) GetCompanyByAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return s.getCompany(ctx, `p.account_id = ?`, accountID)
}

func (s *Store) ListCompanies(ctx context.Context, p models.PageParams) ([]models.Account, error) {
	rows, err := s.q.QueryRows(ctx, companySelect+` ORDER BY a.created DESC, a.id LIMIT ? OFFSET ?`, p.Limit, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	out := []models.Account{}
	for rows.Next() {
		a, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) CountCompanies(ctx context.Context) (int64, error) {
	var n int64
	if err := s.q.QueryRow(ctx, `SELECT COUNT(1) FROM companies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateCompany(ctx context.Context, id string, u models.CompanyUpdate) error {
	res, err := s.q.Exec(ctx, `UPDATE companies SET
		address = COALESCE(?, address),
		city = COALESCE(?, city),
		state = COALESCE(?, state),
		zip_code = COALESCE(?, zip_code),
		phone = COALESCE(?, phone)
		WHERE id = ?`,
		deref(u.Address), deref(u.City), deref(u.State), deref(u.ZipCode), deref(u.Phone), id)
	if err != nil {
		return classify(err)
	}
	return checkAffected(res, "company")
}
