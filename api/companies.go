package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/frota/internal/provision"
	"github.com/garnizeh/frota/internal/validate"
	"github.com/garnizeh/frota/pkg/models"
)

type CompaniesHandler struct {
	binder
	svc *provision.Service
}

func NewCompaniesHandler(svc *provision.Service, schemas *validate.Registry) *CompaniesHandler {
	return &CompaniesHandler{binder: binder{schemas: schemas}, svc: svc}
}

type createCompanyRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	CNPJ     string `json:"cnpj"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Phone    string `json:"phone"`
}

type updateCompanyRequest struct {
	accountPatch
	CNPJ    *string `json:"cnpj"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zipCode"`
	Phone   *string `json:"phone"`
}

func (h *CompaniesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := h.bind(r, validate.CompanyCreate, &req); err != nil {
		writeError(w, err)
		return
	}

	acc, err := h.svc.CreateCompany(r.Context(), provision.CreateCompanyInput{
		NewAccount: provision.NewAccount{Name: req.Name, Email: req.Email, Password: req.Password},
		CNPJ:       req.CNPJ,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		ZipCode:    req.ZipCode,
		Phone:      req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusCreated)
}

func (h *CompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListCompanies(r.Context(), pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

func (h *CompaniesHandler) Get(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.GetCompany(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}

func (h *CompaniesHandler) GetByAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.GetCompanyByAccount(r.Context(), mux.Vars(r)["accountId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}

func (h *CompaniesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCompanyRequest
	if err := h.bind(r, validate.CompanyUpdate, &req); err != nil {
		writeError(w, err)
		return
	}

	acc, err := h.svc.UpdateCompany(r.Context(), actorFrom(r), mux.Vars(r)["id"], provision.UpdateCompanyInput{
		AccountChanges: req.changes(),
		CNPJ:           req.CNPJ,
		Profile: models.CompanyUpdate{
			Address: req.Address,
			City:    req.City,
			State:   req.State,
			ZipCode: req.ZipCode,
			Phone:   req.Phone,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}

func (h *CompaniesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveCompany(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
