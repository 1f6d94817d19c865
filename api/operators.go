package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/frota/internal/provision"
	"github.com/garnizeh/frota/internal/validate"
	"github.com/garnizeh/frota/pkg/models"
)

type OperatorsHandler struct {
	binder
	svc *provision.Service
}

func NewOperatorsHandler(svc *provision.Service, schemas *validate.Registry) *OperatorsHandler {
	return &OperatorsHandler{binder: binder{schemas: schemas}, svc: svc}
}

type createOperatorRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	CPF       *string `json:"cpf"`
	Region    string  `json:"region"`
	CompanyID *string `json:"companyId"`
}

type updateOperatorRequest struct {
	accountPatch
	Region    *string `json:"region"`
	CompanyID *string `json:"companyId"`
}

func (h *OperatorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOperatorRequest
	if err := h.bind(r, validate.OperatorCreate, &req); err != nil {
		writeError(w, err)
		return
	}

	acc, err := h.svc.CreateOperator(r.Context(), actorFrom(r), provision.CreateOperatorInput{
		NewAccount: provision.NewAccount{Name: req.Name, Email: req.Email, Password: req.Password, CPF: req.CPF},
		Region:     req.Region,
		CompanyID:  req.CompanyID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusCreated)
}

func (h *OperatorsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListOperators(r.Context(), pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

func (h *OperatorsHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListOperatorsByCompany(r.Context(), mux.Vars(r)["companyId"], pageParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

func (h *OperatorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.GetOperator(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}

func (h *OperatorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateOperatorRequest
	if err := h.bind(r, validate.OperatorUpdate, &req); err != nil {
		writeError(w, err)
		return
	}

	acc, err := h.svc.UpdateOperator(r.Context(), actorFrom(r), mux.Vars(r)["id"], provision.UpdateOperatorInput{
		AccountChanges: req.changes(),
		Profile:        models.OperatorUpdate{Region: req.Region, CompanyID: req.CompanyID},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}

func (h *OperatorsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveOperator(r.Context(), actorFrom(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
