package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/frota/internal/provision"
	"github.com/garnizeh/frota/internal/validate"
	"github.com/garnizeh/frota/pkg/models"
)

type DriversHandler struct {
	binder
	svc *provision.Service
}

func NewDriversHandler(svc *provision.Service, schemas *validate.Registry) *DriversHandler {
	return &DriversHandler{binder: binder{schemas: schemas}, svc: svc}
}

type createDriverRequest struct {
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Password       string              `json:"password"`
	CPF            *string             `json:"cpf"`
	CNH            string              `json:"cnh"`
	CompanyID      *string             `json:"companyId"`
	Status         models.DriverStatus `json:"status"`
	ToxicologyExam *string             `json:"toxicologyExam"`
}

type updateDriverRequest struct {
	accountPatch
	CNH              *string              `json:"cnh"`
	CompanyID        *string              `json:"companyId"`
	Status           *models.DriverStatus `json:"status"`
	ToxicologyExam   *string              `json:"toxicologyExam"`
	CurrentVehicleID *string              `json:"currentVehicleId"`
	UnassignVehicle  bool                 `json:"unassignVehicle"`
}

func (h *DriversHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	photo, err := h.bindWithPhoto(r, validate.DriverCreate, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	exam, err := parseDate("toxicologyExam", req.ToxicologyExam)
	if err != nil {
		writeError(w, err)
		return
	}

	acc, err := h.svc.CreateDriver(r.Context(), actorFrom(r), provision.CreateDriverInput{
		NewAccount:     provision.NewAccount{Name: req.Name, Email: req.Email, Password: req.Password, CPF: req.CPF},
		CNH:            req.CNH,
		CompanyID:      req.CompanyID,
		Status:         req.Status,
		ToxicologyExam: exam,
		Photo:          photo,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusCreated)
}

func (h *DriversHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListDrivers(r.Context(), pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

func (h *DriversHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListDriversByCompany(r.Context(), mux.Vars(r)["companyId"], pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

func (h *DriversHandler) Get(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.GetDriver(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}

// Public serves the anonymous share-link view of a driver.
func (h *DriversHandler) Public(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.FindByPublicToken(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, view, http.StatusOK)
}

func (h *DriversHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateDriverRequest
	photo, err := h.bindWithPhoto(r, validate.DriverUpdate, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	exam, err := parseDate("toxicologyExam", req.ToxicologyExam)
	if err != nil {
		writeError(w, err)
		return
	}

	acc, err := h.svc.UpdateDriver(r.Context(), actorFrom(r), mux.Vars(r)["id"], provision.UpdateDriverInput{
		AccountChanges: req.changes(),
		Profile: models.DriverUpdate{
			CNH:            req.CNH,
			Status:         req.Status,
			ToxicologyExam: exam,
			CompanyID:      req.CompanyID,
		},
		CurrentVehicleID: req.CurrentVehicleID,
		UnassignVehicle:  req.UnassignVehicle,
		Photo:            photo,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}

func (h *DriversHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveDriver(r.Context(), actorFrom(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
