package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/frota/internal/provision"
	"github.com/garnizeh/frota/internal/validate"
	"github.com/garnizeh/frota/pkg/models"
)

type AdminsHandler struct {
	binder
	svc *provision.Service
}

func NewAdminsHandler(svc *provision.Service, schemas *validate.Registry) *AdminsHandler {
	return &AdminsHandler{binder: binder{schemas: schemas}, svc: svc}
}

type createAdminRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	CPF      *string `json:"cpf"`
	Region   string  `json:"region"`
}

// accountPatch is the identity half shared by every update body.
type accountPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Active   *bool   `json:"active"`
	CPF      *string `json:"cpf"`
}

func (p accountPatch) changes() provision.AccountChanges {
	return provision.AccountChanges{Name: p.Name, Email: p.Email, Password: p.Password, Active: p.Active, CPF: p.CPF}
}

type updateAdminRequest struct {
	accountPatch
	Region *string `json:"region"`
}

func (h *AdminsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := h.bind(r, validate.AdminCreate, &req); err != nil {
		writeError(w, err)
		return
	}

	acc, err := h.svc.CreateAdmin(r.Context(), provision.CreateAdminInput{
		NewAccount: provision.NewAccount{Name: req.Name, Email: req.Email, Password: req.Password, CPF: req.CPF},
		Region:     req.Region,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusCreated)
}

func (h *AdminsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListAdmins(r.Context(), pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

func (h *AdminsHandler) Get(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.GetAdmin(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}

func (h *AdminsHandler) GetByAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.GetAdminByAccount(r.Context(), mux.Vars(r)["accountId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}

func (h *AdminsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateAdminRequest
	if err := h.bind(r, validate.AdminUpdate, &req); err != nil {
		writeError(w, err)
		return
	}

	acc, err := h.svc.UpdateAdmin(r.Context(), mux.Vars(r)["id"], provision.UpdateAdminInput{
		AccountChanges: req.changes(),
		Profile:        models.AdminUpdate{Region: req.Region},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}

func (h *AdminsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveAdmin(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
