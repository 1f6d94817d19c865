package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

const operatorSelect = `SELECT ` + accountCols + `, p.id, p.region, p.company_id FROM operators p JOIN accounts a ON a.id = p.account_id`

func scanOperator(row scanner) (*models.Account, error) {
	var p models.Operator
	var company sql.NullString
	a, err := scanAccount(row, &p.ID, &p.Region, &company)
	if err != nil {
		return nil, err
	}
	p.AccountID = a.ID
	p.CompanyID = stringPtr(company)
	a.Profile = &p
	return a, nil
}

func (s *Store) CreateOperator(ctx context.Context, p *models.Operator) error {
	if p == nil {
		return fmt.Errorf("operator is nil")
	}
	if p.ID == "" {
		p.ID = newID()
	}
	_, err := s.q.Exec(ctx, `INSERT INTO operators (id, account_id, region, company_id) VALUES (?, ?, ?, ?)`,
		p.ID, p.AccountID, p.Region, nullString(p.CompanyID))
	if err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) getOperator(ctx context.Context, where string, arg string) (*models.Account, error) {
	a, err := scanOperator(s.q.QueryRow(ctx, operatorSelect+` WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get operator: %w", err)
	}
	return a, nil
}

func (s *Store) GetOperator(ctx context.Context, id string) (*models.Account, error) {
	return s.getOperator(ctx, `p.id = ?`, id)
}

func (s *Store) GetOperatorByAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return s.getOperator(ctx, `p.account_id = ?`, accountID)
}

// companyWhere renders the optional company filter shared by operator and
// driver listings.
func companyWhere(f repository.Filter) (string, []any) {
	if f.CompanyID == "" {
		return "", nil
	}
	return ` WHERE p.company_id = ?`, []any{f.CompanyID}
}

func (s *Store) ListOperators(ctx context.Context, f repository.Filter, p models.PageParams) ([]models.Account, error) {
	where, args := companyWhere(f)
	args = append(args, p.Limit, p.Offset())
	rows, err := s.q.QueryRows(ctx, operatorSelect+where+` ORDER BY a.created DESC, a.id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	defer rows.Close()

	out := []models.Account{}
	for rows.Next() {
		a, err := scanOperator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) CountOperators(ctx context.Context, f repository.Filter) (int64, error) {
	where, args := companyWhere(f)
	var n int64
	if err := s.q.QueryRow(ctx, `SELECT COUNT(1) FROM operators p`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count operators: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateOperator(ctx context.Context, id string, u models.OperatorUpdate) error {
	company, setCompany := optionalRef(u.CompanyID)
	res, err := s.q.Exec(ctx, `UPDATE operators SET
		region = COALESCE(?, region),
		company_id = CASE WHEN ? THEN ? ELSE company_id END
		WHERE id = ?`,
		deref(u.Region), setCompany, company, id)
	if err != nil {
		return classify(err)
	}
	return checkAffected(res, "operator")
}
