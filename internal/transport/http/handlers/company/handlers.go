package companyhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/company"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Store *company.Store
}

func NewHandler(store *company.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/companies", func(r chi.Router) {
		r.With(middleware.RequireSuperAdmin).Get("/", h.handleList)
		r.With(middleware.RequireSuperAdmin).Post("/", h.handleCreate)
		r.With(middleware.RequireAuth).Get("/{companyID}", h.handleGet)
		r.With(middleware.RequireCompanyAdmin).Patch("/{companyID}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "company_list_failed", "failed to list companies", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, companies, middleware.GetRequestID(r.Context()))
}

type createCompanyRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Plan         string `json:"plan"`
	MaxEmployees int    `json:"maxEmployees"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("email", payload.Email, "email is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if payload.Plan == "" {
		payload.Plan = "standard"
	}
	if payload.MaxEmployees <= 0 {
		payload.MaxEmployees = 50
	}

	created, err := h.Store.Create(r.Context(), company.Company{
		Name:         payload.Name,
		Email:        payload.Email,
		Status:       company.StatusActive,
		Plan:         payload.Plan,
		MaxEmployees: payload.MaxEmployees,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "company_create_failed", "failed to create company", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := chi.URLParam(r, "companyID")
	if !auth.CompanyScope(user, companyID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "outside company scope", middleware.GetRequestID(r.Context()))
		return
	}

	c, err := h.Store.Get(r.Context(), companyID)
	if errors.Is(err, company.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "company not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "company_get_failed", "failed to load company", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := chi.URLParam(r, "companyID")
	if !auth.CompanyScope(user, companyID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "outside company scope", middleware.GetRequestID(r.Context()))
		return
	}

	var patch company.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if patch.Status != nil {
		v.Enum("status", *patch.Status, company.Statuses, "status must be one of active, suspended, inactive")
	}
	if patch.MaxEmployees != nil && *patch.MaxEmployees <= 0 {
		v.Add("maxEmployees", "must be positive")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	// Plan and employee cap changes are billing decisions, super-admin only.
	if !user.IsSuperAdmin() {
		patch.Plan = nil
		patch.MaxEmployees = nil
		patch.Status = nil
	}

	updated, err := h.Store.Update(r.Context(), companyID, patch)
	if errors.Is(err, company.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "company not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "company_update_failed", "failed to update company", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}
