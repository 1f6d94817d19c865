package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/frota/pkg/models"
)

const adminSelect = `SELECT ` + accountCols + `, p.id, p.region FROM admins p JOIN accounts a ON a.id = p.account_id`

func scanAdmin(row scanner) (*models.Account, error) {
	var p models.Admin
	a, err := scanAccount(row, &p.ID, &p.Region)
	if err != nil {
		return nil, err
	}
	p.AccountID = a.ID
	a.Profile = &p
	return a, nil
}

func (s *Store) CreateAdmin(ctx context.Context, p *models.Admin) error {
	if p == nil {
		return fmt.Errorf("admin is nil")
	}
	if p.ID == "" {
		p.ID = newID()
	}
	if _, err := s.q.Exec(ctx, `INSERT INTO admins (id, account_id, region) VALUES (?, ?, ?)`, p.ID, p.AccountID, p.Region); err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) getAdmin(ctx context.Context, where string, arg string) (*models.Account, error) {
	a, err := scanAdmin(s.q.QueryRow(ctx, adminSelect+` WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return a, nil
}

func (s *Store) GetAdmin(ctx context.Context, id string) (*models.Account, error) {
	return s.getAdmin(ctx, `p.id = ?`, id)
}

func (s *Store) GetAdminByAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return s.getAdmin(ctx, `p.account_id = ?`, accountID)
}

func (s *Store) ListAdmins(ctx context.Context, p models.PageParams) ([]models.Account, error) {
	rows, err := s.q.QueryRows(ctx, adminSelect+` ORDER BY a.created DESC, a.id LIMIT ? OFFSET ?`, p.Limit, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	out := []models.Account{}
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	if err := s.q.QueryRow(ctx, `SELECT COUNT(1) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateAdmin(ctx context.Context, id string, u models.AdminUpdate) error {
	res, err := s.q.Exec(ctx, `UPDATE admins SET region = COALESCE(?, region) WHERE id = ?`, deref(u.Region), id)
	if err != nil {
		return classify(err)
	}
	return checkAffected(res, "admin")
}
