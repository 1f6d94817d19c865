package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

// driverSelect joins the driver's current vehicle so a single round trip
// returns the full profile.
const driverSelect = `SELECT ` + accountCols + `, p.id, p.cnh, p.status, p.photo_url, p.toxicology_exam, p.public_token, p.company_id, ` + vehicleCols + `
	FROM drivers p
	JOIN accounts a ON a.id = p.account_id
	LEFT JOIN vehicles v ON v.driver_id = p.id`

func scanDriver(row scanner) (*models.Account, error) {
	var p models.Driver
	var tox sql.NullInt64
	var company sql.NullString
	var nv nullableVehicle
	extra := append([]any{&p.ID, &p.CNH, &p.Status, &p.PhotoURL, &tox, &p.PublicToken, &company}, nv.dest()...)
	a, err := scanAccount(row, extra...)
	if err != nil {
		return nil, err
	}
	p.AccountID = a.ID
	p.ToxicologyExam = timePtr(tox)
	p.CompanyID = stringPtr(company)
	p.Vehicle = nv.vehicle()
	a.Profile = &p
	return a, nil
}

func (s *Store) CreateDriver(ctx context.Context, p *models.Driver) error {
	if p == nil {
		return fmt.Errorf("driver is nil")
	}
	if p.ID == "" {
		p.ID = newID()
	}
	if p.PublicToken == "" {
		p.PublicToken = newID()
	}
	if p.Status == "" {
		p.Status = models.DriverPending
	}
	_, err := s.q.Exec(ctx, `INSERT INTO drivers (id, account_id, cnh, status, photo_url, toxicology_exam, public_token, company_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AccountID, p.CNH, string(p.Status), p.PhotoURL, millis(p.ToxicologyExam), p.PublicToken, nullString(p.CompanyID))
	if err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) getDriver(ctx context.Context, where string, arg string) (*models.Account, error) {
	a, err := scanDriver(s.q.QueryRow(ctx, driverSelect+` WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver: %w", err)
	}
	return a, nil
}

func (s *Store) GetDriver(ctx context.Context, id string) (*models.Account, error) {
	return s.getDriver(ctx, `p.id = ?`, id)
}

func (s *Store) GetDriverByAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return s.getDriver(ctx, `p.account_id = ?`, accountID)
}

func (s *Store) FindDriverByCNH(ctx context.Context, cnh string) (*models.Driver, error) {
	a, err := s.getDriver(ctx, `p.cnh = ?`, cnh)
	if err != nil || a == nil {
		return nil, err
	}
	return a.Driver(), nil
}

func (s *Store) FindDriverByPublicToken(ctx context.Context, token string) (*models.PublicDriver, error) {
	row := s.q.QueryRow(ctx, `SELECT a.name, p.photo_url, p.status, p.cnh, p.toxicology_exam, ca.name, v.model, v.color, v.plate
		FROM drivers p
		JOIN accounts a ON a.id = p.account_id
		LEFT JOIN companies c ON c.id = p.company_id
		LEFT JOIN accounts ca ON ca.id = c.account_id
		LEFT JOIN vehicles v ON v.driver_id = p.id
		WHERE p.public_token = ?`, token)

	var d models.PublicDriver
	var tox sql.NullInt64
	var companyName, model, color, plate sql.NullString
	if err := row.Scan(&d.Name, &d.PhotoURL, &d.Status, &d.CNH, &tox, &companyName, &model, &color, &plate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find driver by token: %w", err)
	}
	d.ToxicologyExam = timePtr(tox)
	d.CompanyName = companyName.String
	if plate.Valid {
		d.Vehicle = &models.PublicVehicle{Model: model.String, Color: color.String, Plate: plate.String}
	}
	return &d, nil
}

func (s *Store) ListDrivers(ctx context.Context, f repository.Filter, p models.PageParams) ([]models.Account, error) {
	where, args := companyWhere(f)
	args = append(args, p.Limit, p.Offset())
	rows, err := s.q.QueryRows(ctx, driverSelect+where+` ORDER BY a.created DESC, a.id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	out := []models.Account{}
	for rows.Next() {
		a, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) CountDrivers(ctx context.Context, f repository.Filter) (int64, error) {
	where, args := companyWhere(f)
	var n int64
	if err := s.q.QueryRow(ctx, `SELECT COUNT(1) FROM drivers p`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count drivers: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateDriver(ctx context.Context, id string, u models.DriverUpdate) error {
	company, setCompany := optionalRef(u.CompanyID)
	var status any
	if u.Status != nil {
		status = string(*u.Status)
	}
	res, err := s.q.Exec(ctx, `UPDATE drivers SET
		cnh = COALESCE(?, cnh),
		status = COALESCE(?, status),
		photo_url = COALESCE(?, photo_url),
		toxicology_exam = COALESCE(?, toxicology_exam),
		company_id = CASE WHEN ? THEN ? ELSE company_id END
		WHERE id = ?`,
		deref(u.CNH), status, deref(u.PhotoURL), millis(u.ToxicologyExam), setCompany, company, id)
	if err != nil {
		return classify(err)
	}
	return checkAffected(res, "driver")
}
