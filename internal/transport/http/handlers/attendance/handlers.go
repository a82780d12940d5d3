package attendancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/core"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Store *attendance.Store
	Core  *core.Store
}

func NewHandler(store *attendance.Store, coreStore *core.Store) *Handler {
	return &Handler{Store: store, Core: coreStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance-records", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireAuth).Post("/", h.handleCreate)
		r.With(middleware.RequireAuth).Put("/{recordID}", h.handleUpdate)
		r.With(middleware.RequireCompanyAdmin).Delete("/{recordID}", h.handleDelete)
	})
}

// selfEmployee resolves the caller to their employee row. Employee-role
// callers are always pinned to it; admins are not.
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
	employeeID := r.URL.Query().Get("employeeId")

	if !user.IsCompanyAdmin() {
		self, err := h.selfEmployee(r, user)
		if err != nil {
			api.Success(w, []attendance.Record{}, middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = self.ID
	}

	records, err := h.Store.List(r.Context(), scopedCompanyID(r, user), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

type recordRequest struct {
	EmployeeID string     `json:"employeeId"`
	Date       string     `json:"date"`
	CheckIn    *time.Time `json:"checkIn"`
	CheckOut   *time.Time `json:"checkOut"`
	Status     string     `json:"status"`
	Notes      string     `json:"notes"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request, payload *recordRequest) (time.Time, bool) {
	v := shared.NewValidator()
	if payload.Status == "" {
		payload.Status = attendance.StatusPresent
	}
	v.Enum("status", payload.Status, attendance.Statuses, "unknown attendance status")
	date, ok := v.Date("date", payload.Date)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return time.Time{}, false
	}
	return date, ok
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload recordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	// Employees only report their own attendance.
	if !user.IsCompanyAdmin() {
		self, err := h.selfEmployee(r, user)
		if err != nil {
			api.Fail(w, http.StatusForbidden, "forbidden", "no employee record for user", middleware.GetRequestID(r.Context()))
			return
		}
		payload.EmployeeID = self.ID
	}
	if payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "validation_error", "employeeId is required", middleware.GetRequestID(r.Context()))
		return
	}

	date, ok := h.validate(w, r, &payload)
	if !ok {
		return
	}

	created, err := h.Store.Create(r.Context(), attendance.Record{
		CompanyID:  scopedCompanyID(r, user),
		EmployeeID: payload.EmployeeID,
		Date:       date,
		CheckIn:    payload.CheckIn,
		CheckOut:   payload.CheckOut,
		Status:     payload.Status,
		Notes:      payload.Notes,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_create_failed", "failed to create attendance record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	recordID := chi.URLParam(r, "recordID")

	companyID := scopedCompanyID(r, user)
	existing, err := h.Store.Get(r.Context(), companyID, recordID)
	if errors.Is(err, attendance.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_update_failed", "failed to load attendance record", middleware.GetRequestID(r.Context()))
		return
	}

	if !user.IsCompanyAdmin() {
		self, selfErr := h.selfEmployee(r, user)
		if selfErr != nil || self.ID != existing.EmployeeID {
			api.Fail(w, http.StatusForbidden, "forbidden", "not your attendance record", middleware.GetRequestID(r.Context()))
			return
		}
	}

	var payload recordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	date, ok := h.validate(w, r, &payload)
	if !ok {
		return
	}

	updated, err := h.Store.Update(r.Context(), companyID, recordID, attendance.Record{
		Date:     date,
		CheckIn:  payload.CheckIn,
		CheckOut: payload.CheckOut,
		Status:   payload.Status,
		Notes:    payload.Notes,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_update_failed", "failed to update attendance record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Store.Delete(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "recordID")); err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "attendance_delete_failed", "failed to delete attendance record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
