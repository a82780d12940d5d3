package corehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/company"
	"hrms/internal/domain/core"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Core      *core.Store
	Companies *company.Store
}

func NewHandler(coreStore *core.Store, companies *company.Store) *Handler {
	return &Handler{Core: coreStore, Companies: companies}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequireCompanyAdmin).Get("/", h.handleListUsers)
		r.With(middleware.RequireCompanyAdmin).Post("/", h.handleCreateUser)
		r.With(middleware.RequireCompanyAdmin).Patch("/{userID}/status", h.handleUpdateUserStatus)
	})

	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListEmployees)
		r.With(middleware.RequireAuth).Get("/{employeeID}", h.handleGetEmployee)
		r.With(middleware.RequireCompanyAdmin).Post("/", h.handleCreateEmployee)
		r.With(middleware.RequireCompanyAdmin).Put("/{employeeID}", h.handleUpdateEmployee)
		r.With(middleware.RequireCompanyAdmin).Delete("/{employeeID}", h.handleDeleteEmployee)
	})

	h.registerOrgRoutes(r)
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

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := scopedCompanyID(r, user)
	if companyID == "" {
		api.Fail(w, http.StatusBadRequest, "validation_error", "companyId is required", middleware.GetRequestID(r.Context()))
		return
	}

	users, err := h.Core.ListUsersByCompany(r.Context(), companyID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

type createUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	v.Required("name", payload.Name, "name is required")
	if payload.Role == "" {
		payload.Role = auth.RoleEmployee
	}
	if !auth.ValidRole(payload.Role) {
		v.Add("role", "unknown role")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	// Only a super admin can mint other admins or cross-company users.
	companyID := user.CompanyID
	if user.IsSuperAdmin() {
		companyID = payload.CompanyID
	} else if payload.Role != auth.RoleEmployee {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient role", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Role != auth.RoleSuperAdmin && companyID == "" {
		api.Fail(w, http.StatusBadRequest, "validation_error", "companyId is required", middleware.GetRequestID(r.Context()))
		return
	}

	exists, err := h.Core.UserEmailExists(r.Context(), payload.Email)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}
	if exists {
		api.Fail(w, http.StatusBadRequest, "validation_error", "email already in use", middleware.GetRequestID(r.Context()))
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Core.CreateUser(r.Context(), payload.Email, hash, payload.Name, payload.Role, companyID, auth.UserStatusActive)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := scopedCompanyID(r, user)
	userID := chi.URLParam(r, "userID")

	var payload updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Status != auth.UserStatusActive && payload.Status != auth.UserStatusInactive {
		api.Fail(w, http.StatusBadRequest, "validation_error", "status must be active or inactive", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Core.UpdateUserStatus(r.Context(), companyID, userID, payload.Status); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": payload.Status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := scopedCompanyID(r, user)
	if companyID == "" {
		api.Fail(w, http.StatusBadRequest, "validation_error", "companyId is required", middleware.GetRequestID(r.Context()))
		return
	}

	var (
		employees []core.Employee
		err       error
	)
	if r.URL.Query().Get("view") == "manager" {
		manager, lookupErr := h.Core.EmployeeByUserEmail(r.Context(), companyID, user.Email)
		if lookupErr != nil {
			api.Success(w, []core.Employee{}, middleware.GetRequestID(r.Context()))
			return
		}
		employees, err = h.Core.ListEmployeesByManager(r.Context(), companyID, manager.ID)
	} else {
		employees, err = h.Core.ListEmployees(r.Context(), companyID)
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := scopedCompanyID(r, user)

	emp, err := h.Core.GetEmployee(r.Context(), companyID, chi.URLParam(r, "employeeID"))
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

type createEmployeeRequest struct {
	core.Employee
	// Password, when present, also provisions a login for the employee.
	Password string `json:"password"`
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := scopedCompanyID(r, user)
	if companyID == "" {
		api.Fail(w, http.StatusBadRequest, "validation_error", "companyId is required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "firstName is required")
	v.Required("lastName", payload.LastName, "lastName is required")
	v.Required("email", payload.Email, "email is required")
	if payload.Status == "" {
		payload.Status = core.EmployeeStatusActive
	}
	v.Enum("status", payload.Status, core.EmployeeStatuses, "unknown employee status")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	c, err := h.Companies.Get(r.Context(), companyID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}
	count, err := h.Companies.EmployeeCount(r.Context(), companyID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}
	if c.MaxEmployees > 0 && count >= c.MaxEmployees {
		api.Fail(w, http.StatusBadRequest, "limit_reached", "company employee limit reached", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Core.CreateEmployee(r.Context(), companyID, payload.Employee)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	if payload.Password != "" {
		if err := h.provisionLogin(r, companyID, payload); err != nil {
			slog.Warn("employee login provisioning failed", "employeeId", id, "err", err)
		}
	}

	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) provisionLogin(r *http.Request, companyID string, payload createEmployeeRequest) error {
	exists, err := h.Core.UserEmailExists(r.Context(), payload.Email)
	if err != nil || exists {
		return err
	}
	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return err
	}
	name := payload.FirstName + " " + payload.LastName
	_, err = h.Core.CreateUser(r.Context(), payload.Email, hash, name, auth.RoleEmployee, companyID, auth.UserStatusActive)
	return err
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := scopedCompanyID(r, user)
	employeeID := chi.URLParam(r, "employeeID")

	var payload core.Employee
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "firstName is required")
	v.Required("lastName", payload.LastName, "lastName is required")
	v.Required("email", payload.Email, "email is required")
	v.Enum("status", payload.Status, core.EmployeeStatuses, "unknown employee status")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Core.UpdateEmployee(r.Context(), companyID, employeeID, payload); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Core.GetEmployee(r.Context(), companyID, employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	companyID := scopedCompanyID(r, user)

	if err := h.Core.DeleteEmployee(r.Context(), companyID, chi.URLParam(r, "employeeID")); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
