package workflowhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/core"
	"hrms/internal/domain/workflow"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Store *workflow.Store
	Core  *core.Store
}

func NewHandler(store *workflow.Store, coreStore *core.Store) *Handler {
	return &Handler{Store: store, Core: coreStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/workflows", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireCompanyAdmin).Post("/", h.handleCreate)
		r.With(middleware.RequireAuth).Get("/{workflowID}", h.handleGet)
		r.With(middleware.RequireAuth).Patch("/{workflowID}", h.handleUpdate)
		r.With(middleware.RequireCompanyAdmin).Delete("/{workflowID}", h.handleDelete)
	})
}

func (h *Handler) selfEmployee(r *http.Request, user auth.UserContext) (core.Employee, error) {
	return h.Core.EmployeeByUserEmail(r.Context(), user.CompanyID, user.Email)
}

// scopedCompanyID resolves which company the caller operates on. Super admins
// may target any company through ?companyId; everyone else is pinned to their
// own.
func scopedCompanyID(r *http.Request, user auth.UserContext) string {
	if user.IsSuperAdmin() {
		if id := r.URL.Query().Get("companyId"); id != "" {
			return id
		}
	}
	return user.CompanyID
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	assignedTo := r.URL.Query().Get("assignedTo")
	if !user.IsCompanyAdmin() {
		self, err := h.selfEmployee(r, user)
		if err != nil {
			api.Success(w, []workflow.Workflow{}, middleware.GetRequestID(r.Context()))
			return
		}
		assignedTo = self.ID
	}

	workflows, err := h.Store.List(r.Context(), scopedCompanyID(r, user), assignedTo)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "workflow_list_failed", "failed to list workflows", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, workflows, middleware.GetRequestID(r.Context()))
}

type createWorkflowRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assignedTo"`
	Notes       string     `json:"notes"`
	DueDate     *time.Time `json:"dueDate"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload createWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Required("assignedTo", payload.AssignedTo, "assignedTo is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	companyID := scopedCompanyID(r, user)
	if _, err := h.Core.GetEmployee(r.Context(), companyID, payload.AssignedTo); err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", "assignedTo is not an employee of this company", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Store.Create(r.Context(), workflow.Workflow{
		CompanyID:   companyID,
		Title:       payload.Title,
		Description: payload.Description,
		AssignedTo:  payload.AssignedTo,
		AssignedBy:  user.UserID,
		Status:      workflow.StatusPending,
		Progress:    0,
		Notes:       payload.Notes,
		DueDate:     payload.DueDate,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "workflow_create_failed", "failed to create workflow", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	wf, err := h.Store.Get(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "workflowID"))
	if errors.Is(err, workflow.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "workflow not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "workflow_get_failed", "failed to load workflow", middleware.GetRequestID(r.Context()))
		return
	}

	if !user.IsCompanyAdmin() {
		self, selfErr := h.selfEmployee(r, user)
		if selfErr != nil || self.ID != wf.AssignedTo {
			api.Fail(w, http.StatusForbidden, "forbidden", "workflow is not assigned to you", middleware.GetRequestID(r.Context()))
			return
		}
	}
	api.Success(w, wf, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	workflowID := chi.URLParam(r, "workflowID")

	companyID := scopedCompanyID(r, user)
	wf, err := h.Store.Get(r.Context(), companyID, workflowID)
	if errors.Is(err, workflow.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "workflow not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "workflow_update_failed", "failed to load workflow", middleware.GetRequestID(r.Context()))
		return
	}

	var patch workflow.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	// Assignees may only move their own work, and only the fields an
	// assignee owns; everything else in the patch is dropped.
	if !user.IsCompanyAdmin() {
		self, selfErr := h.selfEmployee(r, user)
		if selfErr != nil || self.ID != wf.AssignedTo {
			api.Fail(w, http.StatusForbidden, "forbidden", "workflow is not assigned to you", middleware.GetRequestID(r.Context()))
			return
		}
		patch = patch.EmployeeFields()
	}

	v := shared.NewValidator()
	if patch.Status != nil {
		v.Enum("status", *patch.Status, workflow.Statuses, "unknown workflow status")
	}
	if patch.Progress != nil {
		v.IntRange("progress", *patch.Progress, 0, 100, "progress must be 0-100")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Store.Update(r.Context(), companyID, workflowID, patch)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "workflow_update_failed", "failed to update workflow", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	if err := h.Store.Delete(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "workflowID")); err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "workflow not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "workflow_delete_failed", "failed to delete workflow", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
