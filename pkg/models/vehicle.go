package models

import "time"

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "DISPONIVEL"
	VehicleInUse       VehicleStatus = "EM_USO"
	VehicleMaintenance VehicleStatus = "MANUTENCAO"
	VehicleInactive    VehicleStatus = "INATIVO"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleInUse, VehicleMaintenance, VehicleInactive:
		return true
	}
	return false
}

type Vehicle struct {
	ID            string        `json:"id" db:"id"`
	Plate         string        `json:"plate" db:"plate"`
	Renavam       string        `json:"renavam" db:"renavam"`
	Brand         string        `json:"brand" db:"brand"`
	Model         string        `json:"model" db:"model"`
	Color         string        `json:"color" db:"color"`
	Year          string        `json:"year" db:"year"`
	Status        VehicleStatus `json:"status" db:"status"`
	LicensingDate time.Time     `json:"licensingDate" db:"licensing_date"`
	OwnerName     string        `json:"ownerName" db:"owner_name"`
	CompanyID     *string       `json:"companyId" db:"company_id"`
	DriverID      *string       `json:"driverId" db:"driver_id"`
	Created       int64         `json:"created" db:"created"`
	Updated       int64         `json:"updated" db:"updated"`
}

type VehicleUpdate struct {
	Plate         *string
	Renavam       *string
	Brand         *string
	Model         *string
	Color         *string
	Year          *string
	Status        *VehicleStatus
	LicensingDate *time.Time
	OwnerName     *string
	CompanyID     *string
}
