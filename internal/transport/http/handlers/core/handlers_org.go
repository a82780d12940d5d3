package corehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/core"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

// Org reference entities share a shape: company-scoped read for any member,
// company-admin write, hard delete.
func (h *Handler) registerOrgRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListDepartments)
		r.With(middleware.RequireCompanyAdmin).Post("/", h.handleCreateDepartment)
		r.With(middleware.RequireCompanyAdmin).Put("/{id}", h.handleUpdateDepartment)
		r.With(middleware.RequireCompanyAdmin).Delete("/{id}", h.deleteOrg(h.Core.DeleteDepartment))
	})
	r.Route("/designations", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListDesignations)
		r.With(middleware.RequireCompanyAdmin).Post("/", h.handleCreateDesignation)
		r.With(middleware.RequireCompanyAdmin).Put("/{id}", h.handleUpdateDesignation)
		r.With(middleware.RequireCompanyAdmin).Delete("/{id}", h.deleteOrg(h.Core.DeleteDesignation))
	})
	r.Route("/role-levels", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListRoleLevels)
		r.With(middleware.RequireCompanyAdmin).Post("/", h.handleCreateRoleLevel)
		r.With(middleware.RequireCompanyAdmin).Put("/{id}", h.handleUpdateRoleLevel)
		r.With(middleware.RequireCompanyAdmin).Delete("/{id}", h.deleteOrg(h.Core.DeleteRoleLevel))
	})
	r.Route("/ctc-components", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListCTCComponents)
		r.With(middleware.RequireCompanyAdmin).Post("/", h.handleCreateCTCComponent)
		r.With(middleware.RequireCompanyAdmin).Put("/{id}", h.handleUpdateCTCComponent)
		r.With(middleware.RequireCompanyAdmin).Delete("/{id}", h.deleteOrg(h.Core.DeleteCTCComponent))
	})
	r.Route("/shifts", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListShifts)
		r.With(middleware.RequireCompanyAdmin).Post("/", h.handleCreateShift)
		r.With(middleware.RequireCompanyAdmin).Put("/{id}", h.handleUpdateShift)
		r.With(middleware.RequireCompanyAdmin).Delete("/{id}", h.deleteOrg(h.Core.DeleteShift))
	})
	r.Route("/holidays", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListHolidays)
		r.With(middleware.RequireCompanyAdmin).Post("/", h.handleCreateHoliday)
		r.With(middleware.RequireCompanyAdmin).Delete("/{id}", h.deleteOrg(h.Core.DeleteHoliday))
	})
}

func (h *Handler) deleteOrg(del func(ctx context.Context, companyID, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r.Context())
		companyID := scopedCompanyID(r, user)
		if err := del(r.Context(), companyID, chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				api.Fail(w, http.StatusNotFound, "not_found", "record not found", middleware.GetRequestID(r.Context()))
				return
			}
			api.Fail(w, http.StatusInternalServerError, "delete_failed", "failed to delete record", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Core.ListDepartments(r.Context(), scopedCompanyID(r, user))
	writeListResponse(w, r, out, err, "department_list_failed")
}

type departmentRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload departmentRequest
	if !decodeNamed(w, r, &payload, func() string { return payload.Name }) {
		return
	}
	id, err := h.Core.CreateDepartment(r.Context(), scopedCompanyID(r, user), payload.Name, payload.Code)
	writeCreateResponse(w, r, id, err, "department_create_failed")
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload departmentRequest
	if !decodeNamed(w, r, &payload, func() string { return payload.Name }) {
		return
	}
	err := h.Core.UpdateDepartment(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "id"), payload.Name, payload.Code)
	writeUpdateResponse(w, r, err, "department_update_failed")
}

func (h *Handler) handleListDesignations(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Core.ListDesignations(r.Context(), scopedCompanyID(r, user))
	writeListResponse(w, r, out, err, "designation_list_failed")
}

type designationRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateDesignation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload designationRequest
	if !decodeNamed(w, r, &payload, func() string { return payload.Name }) {
		return
	}
	id, err := h.Core.CreateDesignation(r.Context(), scopedCompanyID(r, user), payload.Name)
	writeCreateResponse(w, r, id, err, "designation_create_failed")
}

func (h *Handler) handleUpdateDesignation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload designationRequest
	if !decodeNamed(w, r, &payload, func() string { return payload.Name }) {
		return
	}
	err := h.Core.UpdateDesignation(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "id"), payload.Name)
	writeUpdateResponse(w, r, err, "designation_update_failed")
}

func (h *Handler) handleListRoleLevels(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Core.ListRoleLevels(r.Context(), scopedCompanyID(r, user))
	writeListResponse(w, r, out, err, "role_level_list_failed")
}

type roleLevelRequest struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

func (h *Handler) handleCreateRoleLevel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload roleLevelRequest
	if !decodeNamed(w, r, &payload, func() string { return payload.Name }) {
		return
	}
	id, err := h.Core.CreateRoleLevel(r.Context(), scopedCompanyID(r, user), payload.Name, payload.Level)
	writeCreateResponse(w, r, id, err, "role_level_create_failed")
}

func (h *Handler) handleUpdateRoleLevel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload roleLevelRequest
	if !decodeNamed(w, r, &payload, func() string { return payload.Name }) {
		return
	}
	err := h.Core.UpdateRoleLevel(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "id"), payload.Name, payload.Level)
	writeUpdateResponse(w, r, err, "role_level_update_failed")
}

func (h *Handler) handleListCTCComponents(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Core.ListCTCComponents(r.Context(), scopedCompanyID(r, user))
	writeListResponse(w, r, out, err, "ctc_component_list_failed")
}

type ctcComponentRequest struct {
	Name          string `json:"name"`
	ComponentType string `json:"componentType"`
	Taxable       bool   `json:"taxable"`
}

func (h *Handler) handleCreateCTCComponent(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload ctcComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Enum("componentType", payload.ComponentType, []string{core.ComponentTypeEarning, core.ComponentTypeDeduction}, "componentType must be earning or deduction")
	v.Required("componentType", payload.ComponentType, "componentType is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	id, err := h.Core.CreateCTCComponent(r.Context(), scopedCompanyID(r, user), payload.Name, payload.ComponentType, payload.Taxable)
	writeCreateResponse(w, r, id, err, "ctc_component_create_failed")
}

func (h *Handler) handleUpdateCTCComponent(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload ctcComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	err := h.Core.UpdateCTCComponent(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "id"), payload.Name, payload.ComponentType, payload.Taxable)
	writeUpdateResponse(w, r, err, "ctc_component_update_failed")
}

func (h *Handler) handleListShifts(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Core.ListShifts(r.Context(), scopedCompanyID(r, user))
	writeListResponse(w, r, out, err, "shift_list_failed")
}

type shiftRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (h *Handler) handleCreateShift(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload shiftRequest
	if !decodeNamed(w, r, &payload, func() string { return payload.Name }) {
		return
	}
	id, err := h.Core.CreateShift(r.Context(), scopedCompanyID(r, user), payload.Name, payload.StartTime, payload.EndTime)
	writeCreateResponse(w, r, id, err, "shift_create_failed")
}

func (h *Handler) handleUpdateShift(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload shiftRequest
	if !decodeNamed(w, r, &payload, func() string { return payload.Name }) {
		return
	}
	err := h.Core.UpdateShift(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "id"), payload.Name, payload.StartTime, payload.EndTime)
	writeUpdateResponse(w, r, err, "shift_update_failed")
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Core.ListHolidays(r.Context(), scopedCompanyID(r, user))
	writeListResponse(w, r, out, err, "holiday_list_failed")
}

type holidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload holidayRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	date, ok := v.Date("date", payload.Date)
	if v.Reject(w, middleware.GetRequestID(r.Context())) || !ok {
		return
	}
	id, err := h.Core.CreateHoliday(r.Context(), scopedCompanyID(r, user), date, payload.Name)
	writeCreateResponse(w, r, id, err, "holiday_create_failed")
}

// decodeNamed decodes the payload and rejects it when the name resolved by
// the callback is blank.
func decodeNamed(w http.ResponseWriter, r *http.Request, payload any, name func() string) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return false
	}
	v := shared.NewValidator()
	v.Required("name", name(), "name is required")
	return !v.Reject(w, middleware.GetRequestID(r.Context()))
}

func writeListResponse(w http.ResponseWriter, r *http.Request, data any, err error, code string) {
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, code, "request failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, data, middleware.GetRequestID(r.Context()))
}

func writeCreateResponse(w http.ResponseWriter, r *http.Request, id string, err error, code string) {
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, code, "request failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func writeUpdateResponse(w http.ResponseWriter, r *http.Request, err error, code string) {
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, code, "request failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, middleware.GetRequestID(r.Context()))
}
