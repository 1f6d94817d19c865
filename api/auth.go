package api

import (
	"net/http"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/provision"
	"github.com/garnizeh/frota/internal/validate"
	"github.com/garnizeh/frota/pkg/models"
)

type AuthHandler struct {
	binder
	svc *provision.Service
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(svc *provision.Service, schemas *validate.Registry) *AuthHandler {
	return &AuthHandler{binder: binder{schemas: schemas}, svc: svc}
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	CPF      *string     `json:"cpf"`
	CNPJ     *string     `json:"cnpj"`
	CNH      *string     `json:"cnh"`
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := h.bind(r, validate.Signin, &req); err != nil {
		writeError(w, err)
		return
	}

	sess, err := h.svc.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, sess, http.StatusOK)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.bind(r, validate.Register, &req); err != nil {
		writeError(w, err)
		return
	}

	reg, err := h.svc.Register(r.Context(), provision.RegisterInput{
		NewAccount: provision.NewAccount{Name: req.Name, Email: req.Email, Password: req.Password, CPF: req.CPF},
		Role:       req.Role,
		CNPJ:       req.CNPJ,
		CNH:        req.CNH,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, reg, http.StatusCreated)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, apperr.Unauthorized("missing credentials"))
		return
	}
	if err := h.svc.Signout(r.Context(), claims); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "signed out"}, http.StatusOK)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.Me(r.Context(), actorFrom(r).AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, acc, http.StatusOK)
}
