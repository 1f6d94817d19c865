package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

const vehicleCols = `v.id, v.plate, v.renavam, v.brand, v.model, v.color, v.year, v.status, v.licensing_date, v.owner_name, v.company_id, v.driver_id, v.created, v.updated`

func scanVehicle(row scanner) (*models.Vehicle, error) {
	var v models.Vehicle
	var licensing int64
	var company, driver sql.NullString
	if err := row.Scan(&v.ID, &v.Plate, &v.Renavam, &v.Brand, &v.Model, &v.Color, &v.Year, &v.Status, &licensing, &v.OwnerName, &company, &driver, &v.Created, &v.Updated); err != nil {
		return nil, err
	}
	v.LicensingDate = time.UnixMilli(licensing).UTC()
	v.CompanyID = stringPtr(company)
	v.DriverID = stringPtr(driver)
	return &v, nil
}

// nullableVehicle scans vehicleCols from a LEFT JOIN where every column may
// come back NULL.
type nullableVehicle struct {
	id, plate, renavam, brand, model, color, year, status, owner, company, driver sql.NullString
	licensing, created, updated                                                  sql.NullInt64
}

func (n *nullableVehicle) dest() []any {
	return []any{&n.id, &n.plate, &n.renavam, &n.brand, &n.model, &n.color, &n.year, &n.status, &n.licensing, &n.owner, &n.company, &n.driver, &n.created, &n.updated}
}

func (n *nullableVehicle) vehicle() *models.Vehicle {
	if !n.id.Valid {
		return nil
	}
	return &models.Vehicle{
		ID:            n.id.String,
		Plate:         n.plate.String,
		Renavam:       n.renavam.String,
		Brand:         n.brand.String,
		Model:         n.model.String,
		Color:         n.color.String,
		Year:          n.year.String,
		Status:        models.VehicleStatus(n.status.String),
		LicensingDate: time.UnixMilli(n.licensing.Int64).UTC(),
		OwnerName:     n.owner.String,
		CompanyID:     stringPtr(n.company),
		DriverID:      stringPtr(n.driver),
		Created:       n.created.Int64,
		Updated:       n.updated.Int64,
	}
}

func (s *Store) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	if v == nil {
		return fmt.Errorf("vehicle is nil")
	}
	if v.ID == "" {
		v.ID = newID()
	}
	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}
	ts := now()
	v.Created, v.Updated = ts, ts

	_, err := s.q.Exec(ctx, `INSERT INTO vehicles (id, plate, renavam, brand, model, color, year, status, licensing_date, owner_name, company_id, driver_id, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Plate, v.Renavam, v.Brand, v.Model, v.Color, v.Year, string(v.Status), v.LicensingDate.UTC().UnixMilli(), v.OwnerName,
		nullString(v.CompanyID), nullString(v.DriverID), v.Created, v.Updated)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	v, err := scanVehicle(s.q.QueryRow(ctx, `SELECT `+vehicleCols+` FROM vehicles v WHERE v.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

func vehicleWhere(f repository.Filter) (string, []any) {
	var conds []string
	var args []any
	if f.CompanyID != "" {
		conds = append(conds, `v.company_id = ?`)
		args = append(args, f.CompanyID)
	}
	if f.DriverID != "" {
		conds = append(conds, `v.driver_id = ?`)
		args = append(args, f.DriverID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

func (s *Store) ListVehicles(ctx context.Context, f repository.Filter, p models.PageParams) ([]models.Vehicle, error) {
	where, args := vehicleWhere(f)
	args = append(args, p.Limit, p.Offset())
	rows, err := s.q.QueryRows(ctx, `SELECT `+vehicleCols+` FROM vehicles v`+where+` ORDER BY v.created DESC, v.id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (s *Store) CountVehicles(ctx context.Context, f repository.Filter) (int64, error) {
	where, args := vehicleWhere(f)
	var n int64
	if err := s.q.QueryRow(ctx, `SELECT COUNT(1) FROM vehicles v`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count vehicles: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateVehicle(ctx context.Context, id string, u models.VehicleUpdate) error {
	company, setCompany := optionalRef(u.CompanyID)
	var status any
	if u.Status != nil {
		status = string(*u.Status)
	}
	res, err := s.q.Exec(ctx, `UPDATE vehicles SET
		plate = COALESCE(?, plate),
		renavam = COALESCE(?, renavam),
		brand = COALESCE(?, brand),
		model = COALESCE(?, model),
		color = COALESCE(?, color),
		year = COALESCE(?, year),
		status = COALESCE(?, status),
		licensing_date = COALESCE(?, licensing_date),
		owner_name = COALESCE(?, owner_name),
		company_id = CASE WHEN ? THEN ? ELSE company_id END,
		updated = ?
		WHERE id = ?`,
		deref(u.Plate), deref(u.Renavam), deref(u.Brand), deref(u.Model), deref(u.Color), deref(u.Year), status,
		millis(u.LicensingDate), deref(u.OwnerName), setCompany, company, now(), id)
	if err != nil {
		return classify(err)
	}
	return checkAffected(res, "vehicle")
}

func (s *Store) DeleteVehicle(ctx context.Context, id string) error {
	res, err := s.q.Exec(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return classify(err)
	}
	return checkAffected(res, "vehicle")
}

func (s *Store) AssignVehicle(ctx context.Context, vehicleID, driverID string) error {
	if err := s.UnassignDriverVehicle(ctx, driverID); err != nil {
		return err
	}
	res, err := s.q.Exec(ctx, `UPDATE vehicles SET driver_id = ?, updated = ? WHERE id = ?`, driverID, now(), vehicleID)
	if err != nil {
		return classify(err)
	}
	return checkAffected(res, "vehicle")
}

func (s *Store) UnassignDriverVehicle(ctx context.Context, driverID string) error {
	if _, err := s.q.Exec(ctx, `UPDATE vehicles SET driver_id = NULL, updated = ? WHERE driver_id = ?`, now(), driverID); err != nil {
		return classify(err)
	}
	return nil
}
