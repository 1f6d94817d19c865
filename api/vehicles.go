package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/frota/internal/fleet"
	"github.com/garnizeh/frota/internal/validate"
	"github.com/garnizeh/frota/pkg/models"
)

type VehiclesHandler struct {
	binder
	svc *fleet.Service
}

func NewVehiclesHandler(svc *fleet.Service, schemas *validate.Registry) *VehiclesHandler {
	return &VehiclesHandler{binder: binder{schemas: schemas}, svc: svc}
}

type createVehicleRequest struct {
	Plate         string               `json:"plate"`
	Renavam       string               `json:"renavam"`
	Brand         string               `json:"brand"`
	Model         string               `json:"model"`
	Color         string               `json:"color"`
	Year          string               `json:"year"`
	Status        models.VehicleStatus `json:"status"`
	LicensingDate string               `json:"licensingDate"`
	OwnerName     string               `json:"ownerName"`
	CompanyID     *string              `json:"companyId"`
	DriverID      *string              `json:"driverId"`
}

type updateVehicleRequest struct {
	Plate         *string               `json:"plate"`
	Renavam       *string               `json:"renavam"`
	Brand         *string               `json:"brand"`
	Model         *string               `json:"model"`
	Color         *string               `json:"color"`
	Year          *string               `json:"year"`
	Status        *models.VehicleStatus `json:"status"`
	LicensingDate *string               `json:"licensingDate"`
	OwnerName     *string               `json:"ownerName"`
	CompanyID     *string               `json:"companyId"`
}

func (h *VehiclesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if err := h.bind(r, validate.VehicleCreate, &req); err != nil {
		writeError(w, err)
		return
	}
	licensing, err := parseDate("licensingDate", &req.LicensingDate)
	if err != nil {
		writeError(w, err)
		return
	}

	v, err := h.svc.Create(r.Context(), actorFrom(r), fleet.CreateVehicleInput{
		Plate:         req.Plate,
		Renavam:       req.Renavam,
		Brand:         req.Brand,
		Model:         req.Model,
		Color:         req.Color,
		Year:          req.Year,
		Status:        req.Status,
		LicensingDate: *licensing,
		OwnerName:     req.OwnerName,
		CompanyID:     req.CompanyID,
		DriverID:      req.DriverID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, v, http.StatusCreated)
}

func (h *VehiclesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

// ListByCompany reads ?companyId=, defaulting to the caller's company.
func (h *VehiclesHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("companyId")
	if companyID == "" {
		companyID = actorFrom(r).CompanyID
	}
	page, err := h.svc.ListByCompany(r.Context(), companyID, pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

// ListByDriver reads ?driverId=, defaulting to the calling driver.
func (h *VehiclesHandler) ListByDriver(w http.ResponseWriter, r *http.Request) {
	driverID := r.URL.Query().Get("driverId")
	if driverID == "" {
		driverID = actorFrom(r).DriverID
	}
	page, err := h.svc.ListByDriver(r.Context(), driverID, pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

func (h *VehiclesHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, v, http.StatusOK)
}

func (h *VehiclesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateVehicleRequest
	if err := h.bind(r, validate.VehicleUpdate, &req); err != nil {
		writeError(w, err)
		return
	}
	licensing, err := parseDate("licensingDate", req.LicensingDate)
	if err != nil {
		writeError(w, err)
		return
	}

	v, err := h.svc.Update(r.Context(), actorFrom(r), mux.Vars(r)["id"], models.VehicleUpdate{
		Plate:         req.Plate,
		Renavam:       req.Renavam,
		Brand:         req.Brand,
		Model:         req.Model,
		Color:         req.Color,
		Year:          req.Year,
		Status:        req.Status,
		LicensingDate: licensing,
		OwnerName:     req.OwnerName,
		CompanyID:     req.CompanyID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, v, http.StatusOK)
}

func (h *VehiclesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.Context(), actorFrom(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
