package leavehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/core"
	"hrms/internal/domain/leave"
	"hrms/internal/domain/notifications"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Store  *leave.Store
	Core   *core.Store
	Notify *notifications.Service
}

func NewHandler(store *leave.Store, coreStore *core.Store, notify *notifications.Service) *Handler {
	return &Handler{Store: store, Core: coreStore, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/types", h.handleListTypes)
		r.With(middleware.RequireCompanyAdmin).Post("/types", h.handleCreateType)
		r.With(middleware.RequireCompanyAdmin).Put("/types/{typeID}", h.handleUpdateType)
		r.With(middleware.RequireCompanyAdmin).Delete("/types/{typeID}", h.handleDeleteType)

		r.With(middleware.RequireAuth).Get("/requests", h.handleListRequests)
		r.With(middleware.RequireAuth).Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequireAuth).Post("/requests", h.handleCreateRequest)
		r.With(middleware.RequireAuth).Post("/requests/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequireAuth).Post("/requests/{requestID}/reject", h.handleReject)
		r.With(middleware.RequireAuth).Post("/requests/{requestID}/cancel", h.handleCancel)
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

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	types, err := h.Store.ListTypes(r.Context(), scopedCompanyID(r, user))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to list leave types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload leave.LeaveType
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.CreateType(r.Context(), scopedCompanyID(r, user), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_type_create_failed", "failed to create leave type", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload leave.LeaveType
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.UpdateType(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "typeID"), payload); err != nil {
		if errors.Is(err, leave.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "leave type not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_type_update_failed", "failed to update leave type", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Store.DeleteType(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "typeID")); err != nil {
		if errors.Is(err, leave.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "leave type not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_type_delete_failed", "failed to delete leave type", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var employeeID, managerID string
	switch {
	case user.IsCompanyAdmin():
		employeeID = r.URL.Query().Get("employeeId")
	case r.URL.Query().Get("view") == "manager":
		self, err := h.selfEmployee(r, user)
		if err != nil {
			api.Success(w, []leave.Request{}, middleware.GetRequestID(r.Context()))
			return
		}
		managerID = self.ID
	default:
		self, err := h.selfEmployee(r, user)
		if err != nil {
			api.Success(w, []leave.Request{}, middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = self.ID
	}

	requests, err := h.Store.ListRequests(r.Context(), scopedCompanyID(r, user), employeeID, managerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	req, err := h.Store.GetRequest(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "requestID"))
	if errors.Is(err, leave.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_get_failed", "failed to load leave request", middleware.GetRequestID(r.Context()))
		return
	}

	if !user.IsCompanyAdmin() {
		self, selfErr := h.selfEmployee(r, user)
		if selfErr != nil || (self.ID != req.EmployeeID && !h.isManagerOf(r, user, req.EmployeeID, self.ID)) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not your leave request", middleware.GetRequestID(r.Context()))
			return
		}
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

type createRequestPayload struct {
	LeaveTypeID string `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Reason      string `json:"reason"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	self, err := h.selfEmployee(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "no employee record for user", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("leaveTypeId", payload.LeaveTypeID, "leaveTypeId is required")
	start, startOK := v.Date("startDate", payload.StartDate)
	end, endOK := v.Date("endDate", payload.EndDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) || !startOK || !endOK {
		return
	}

	days, err := leave.CalculateDays(start, end)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", "endDate must not be before startDate", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Store.CreateRequest(r.Context(), leave.Request{
		CompanyID:   user.CompanyID,
		EmployeeID:  self.ID,
		LeaveTypeID: payload.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Days:        days,
		Reason:      payload.Reason,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_create_failed", "failed to create leave request", middleware.GetRequestID(r.Context()))
		return
	}

	h.notifyManager(r, user, self,
		"Leave request submitted",
		fmt.Sprintf("%s %s requested %.1f day(s) of leave.", self.FirstName, self.LastName, days))

	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, leave.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, leave.StatusRejected)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, status string) {
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	companyID := scopedCompanyID(r, user)
	req, err := h.Store.GetRequest(r.Context(), companyID, requestID)
	if errors.Is(err, leave.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_review_failed", "failed to load leave request", middleware.GetRequestID(r.Context()))
		return
	}

	// Reporting manager or company admin may decide.
	if !user.IsCompanyAdmin() {
		self, selfErr := h.selfEmployee(r, user)
		if selfErr != nil || !h.isManagerOf(r, user, req.EmployeeID, self.ID) {
			api.Fail(w, http.StatusForbidden, "forbidden", "only the reporting manager may review", middleware.GetRequestID(r.Context()))
			return
		}
	}

	decided, err := h.Store.ReviewRequest(r.Context(), companyID, requestID, user.UserID, status)
	if errors.Is(err, leave.ErrInvalidState) {
		api.Fail(w, http.StatusBadRequest, "invalid_state", "leave request is not pending", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_review_failed", "failed to review leave request", middleware.GetRequestID(r.Context()))
		return
	}

	h.notifyEmployee(r, companyID, decided.EmployeeID,
		"Leave request "+status,
		fmt.Sprintf("Your leave request for %.1f day(s) was %s.", decided.Days, status))

	api.Success(w, decided, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	self, err := h.selfEmployee(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "no employee record for user", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.CancelRequest(r.Context(), user.CompanyID, chi.URLParam(r, "requestID"), self.ID); err != nil {
		if errors.Is(err, leave.ErrInvalidState) {
			api.Fail(w, http.StatusBadRequest, "invalid_state", "only your own pending requests can be cancelled", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_cancel_failed", "failed to cancel leave request", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": leave.StatusCancelled}, middleware.GetRequestID(r.Context()))
}

// isManagerOf reports whether callerEmployeeID is the reporting manager of
// the given employee.
func (h *Handler) isManagerOf(r *http.Request, user auth.UserContext, employeeID, callerEmployeeID string) bool {
	emp, err := h.Core.GetEmployee(r.Context(), user.CompanyID, employeeID)
	if err != nil {
		return false
	}
	return emp.ReportingManagerID != "" && emp.ReportingManagerID == callerEmployeeID
}

func (h *Handler) notifyManager(r *http.Request, user auth.UserContext, self core.Employee, title, body string) {
	if h.Notify == nil || self.ReportingManagerID == "" {
		return
	}
	manager, err := h.Core.GetEmployee(r.Context(), user.CompanyID, self.ReportingManagerID)
	if err != nil {
		return
	}
	h.Notify.NotifyByEmail(r.Context(), manager.Email, title, body)
}

func (h *Handler) notifyEmployee(r *http.Request, companyID, employeeID, title, body string) {
	if h.Notify == nil {
		return
	}
	emp, err := h.Core.GetEmployee(r.Context(), companyID, employeeID)
	if err != nil {
		return
	}
	h.Notify.NotifyByEmail(r.Context(), emp.Email, title, body)
}
