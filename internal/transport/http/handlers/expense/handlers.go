package expensehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/core"
	"hrms/internal/domain/expense"
	"hrms/internal/domain/notifications"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *expense.Service
	Core    *core.Store
	Notify  *notifications.Service
}

func NewHandler(service *expense.Service, coreStore *core.Store, notify *notifications.Service) *Handler {
	return &Handler{Service: service, Core: coreStore, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/expense-types", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListTypes)
		r.With(middleware.RequireCompanyAdmin).Post("/", h.handleCreateType)
		r.With(middleware.RequireCompanyAdmin).Put("/{typeID}", h.handleUpdateType)
		r.With(middleware.RequireCompanyAdmin).Delete("/{typeID}", h.handleDeleteType)
	})

	r.Route("/expense-claims", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListClaims)
		r.Post("/", h.handleCreateClaim)
		r.Get("/{claimID}", h.handleGetClaim)
		r.Patch("/{claimID}", h.handleUpdateClaim)
		r.Delete("/{claimID}", h.handleDeleteClaim)
		r.Post("/{claimID}/submit", h.handleSubmit)
		r.Post("/{claimID}/approve", h.handleApprove)
		r.Post("/{claimID}/reject", h.handleReject)
		r.Post("/{claimID}/disburse", h.handleDisburse)

		r.Get("/{claimID}/items", h.handleListItems)
		r.Post("/{claimID}/items", h.handleAddItem)
		r.Put("/{claimID}/items/{itemID}", h.handleUpdateItem)
		r.Delete("/{claimID}/items/{itemID}", h.handleDeleteItem)
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
	types, err := h.Service.ListTypes(r.Context(), scopedCompanyID(r, user))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "expense_types_failed", "failed to list expense types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) validateType(w http.ResponseWriter, r *http.Request, t expense.ExpenseType) bool {
	v := shared.NewValidator()
	v.Required("name", t.Name, "name is required")
	for i, limit := range t.RoleLevelLimits {
		field := fmt.Sprintf("roleLevelLimits[%d]", i)
		v.Required(field+".roleLevelId", limit.RoleLevelID, "roleLevelId is required")
		v.Enum(field+".limitUnit", limit.LimitUnit, expense.LimitUnits, "limitUnit must be fixed, per_km or per_day")
		if limit.LimitAmount < 0 {
			v.Add(field+".limitAmount", "must not be negative")
		}
	}
	return !v.Reject(w, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload expense.ExpenseType
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if !h.validateType(w, r, payload) {
		return
	}

	id, err := h.Service.CreateType(r.Context(), scopedCompanyID(r, user), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "expense_type_create_failed", "failed to create expense type", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload expense.ExpenseType
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if !h.validateType(w, r, payload) {
		return
	}

	if err := h.Service.UpdateType(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "typeID"), payload); err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "expense type not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "expense_type_update_failed", "failed to update expense type", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Service.DeleteType(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "typeID")); err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "expense type not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "expense_type_delete_failed", "failed to delete expense type", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListClaims(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	query := r.URL.Query()

	filter := expense.ListFilter{
		View:       query.Get("view"),
		EmployeeID: query.Get("employeeId"),
		Status:     query.Get("status"),
	}

	var callerEmployeeID string
	switch filter.View {
	case "manager", "employee":
		self, err := h.selfEmployee(r, user)
		if err != nil {
			api.Success(w, []expense.Claim{}, middleware.GetRequestID(r.Context()))
			return
		}
		callerEmployeeID = self.ID
	default:
		// The unfiltered company-wide view is for admins. Employees fall
		// back to their own claims.
		if !user.IsCompanyAdmin() {
			self, err := h.selfEmployee(r, user)
			if err != nil {
				api.Success(w, []expense.Claim{}, middleware.GetRequestID(r.Context()))
				return
			}
			filter.View = "employee"
			callerEmployeeID = self.ID
		}
	}

	claims, err := h.Service.ListClaims(r.Context(), scopedCompanyID(r, user), filter, callerEmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_list_failed", "failed to list expense claims", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, claims, middleware.GetRequestID(r.Context()))
}

type createClaimRequest struct {
	EmployeeID string `json:"employeeId"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

func (h *Handler) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload createClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if !expense.ValidPeriod(payload.Month, payload.Year) {
		api.Fail(w, http.StatusBadRequest, "validation_error", "month/year is not a valid claim period", middleware.GetRequestID(r.Context()))
		return
	}

	companyID := scopedCompanyID(r, user)

	// Ownership always derives from the session; admins may file on behalf
	// of an employee in their company.
	employeeID := payload.EmployeeID
	if employeeID == "" || !user.IsCompanyAdmin() {
		self, err := h.selfEmployee(r, user)
		if err != nil {
			api.Fail(w, http.StatusForbidden, "forbidden", "no employee record for user", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = self.ID
	} else {
		if _, err := h.Core.GetEmployee(r.Context(), companyID, employeeID); err != nil {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
	}

	claim, err := h.Service.CreateClaim(r.Context(), companyID, employeeID, payload.Month, payload.Year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_create_failed", "failed to create expense claim", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, claim, middleware.GetRequestID(r.Context()))
}

// loadClaimForViewer fetches the claim and enforces read access: admin of the
// company, the claim owner, or the owner's reporting manager.
func (h *Handler) loadClaimForViewer(w http.ResponseWriter, r *http.Request, claimID string) (expense.Claim, core.Employee, bool) {
	user, _ := middleware.GetUser(r.Context())

	claim, err := h.Service.GetClaim(r.Context(), scopedCompanyID(r, user), claimID)
	if errors.Is(err, expense.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "expense claim not found", middleware.GetRequestID(r.Context()))
		return expense.Claim{}, core.Employee{}, false
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_get_failed", "failed to load expense claim", middleware.GetRequestID(r.Context()))
		return expense.Claim{}, core.Employee{}, false
	}

	var self core.Employee
	if !user.IsCompanyAdmin() {
		self, err = h.selfEmployee(r, user)
		if err != nil {
			api.Fail(w, http.StatusForbidden, "forbidden", "no employee record for user", middleware.GetRequestID(r.Context()))
			return expense.Claim{}, core.Employee{}, false
		}
		if self.ID != claim.EmployeeID && !h.isManagerOf(r, user.CompanyID, claim.EmployeeID, self.ID) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not your expense claim", middleware.GetRequestID(r.Context()))
			return expense.Claim{}, core.Employee{}, false
		}
	}
	return claim, self, true
}

// loadClaimForOwner enforces the owner-only operations. Submit, delete and
// item changes belong to the employee the claim is filed for; admins cannot
// act on another employee's claim through these paths.
func (h *Handler) loadClaimForOwner(w http.ResponseWriter, r *http.Request, claimID string) (expense.Claim, bool) {
	user, _ := middleware.GetUser(r.Context())

	claim, err := h.Service.GetClaim(r.Context(), scopedCompanyID(r, user), claimID)
	if errors.Is(err, expense.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "expense claim not found", middleware.GetRequestID(r.Context()))
		return expense.Claim{}, false
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_get_failed", "failed to load expense claim", middleware.GetRequestID(r.Context()))
		return expense.Claim{}, false
	}

	self, selfErr := h.selfEmployee(r, user)
	if selfErr != nil || self.ID != claim.EmployeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "not your expense claim", middleware.GetRequestID(r.Context()))
		return expense.Claim{}, false
	}
	return claim, true
}

// loadClaimForEditor allows the owner or a company admin; used by the patch
// endpoint where admins may correct any claim.
func (h *Handler) loadClaimForEditor(w http.ResponseWriter, r *http.Request, claimID string) (expense.Claim, bool) {
	user, _ := middleware.GetUser(r.Context())

	claim, err := h.Service.GetClaim(r.Context(), scopedCompanyID(r, user), claimID)
	if errors.Is(err, expense.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "expense claim not found", middleware.GetRequestID(r.Context()))
		return expense.Claim{}, false
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_get_failed", "failed to load expense claim", middleware.GetRequestID(r.Context()))
		return expense.Claim{}, false
	}

	if !user.IsCompanyAdmin() {
		self, selfErr := h.selfEmployee(r, user)
		if selfErr != nil || self.ID != claim.EmployeeID {
			api.Fail(w, http.StatusForbidden, "forbidden", "not your expense claim", middleware.GetRequestID(r.Context()))
			return expense.Claim{}, false
		}
	}
	return claim, true
}

func (h *Handler) isManagerOf(r *http.Request, companyID, employeeID, callerEmployeeID string) bool {
	emp, err := h.Core.GetEmployee(r.Context(), companyID, employeeID)
	if err != nil {
		return false
	}
	return emp.ReportingManagerID != "" && emp.ReportingManagerID == callerEmployeeID
}

func (h *Handler) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	claim, _, ok := h.loadClaimForViewer(w, r, chi.URLParam(r, "claimID"))
	if !ok {
		return
	}
	api.Success(w, claim, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateClaim(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	claim, ok := h.loadClaimForEditor(w, r, chi.URLParam(r, "claimID"))
	if !ok {
		return
	}
	// Owners may only reshape drafts; admins may fix any claim.
	if !user.IsCompanyAdmin() && claim.Status != expense.StatusDraft {
		api.Fail(w, http.StatusBadRequest, "invalid_state", "only draft claims can be edited", middleware.GetRequestID(r.Context()))
		return
	}

	var patch expense.ClaimPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if patch.Month != nil || patch.Year != nil {
		month, year := claim.Month, claim.Year
		if patch.Month != nil {
			month = *patch.Month
		}
		if patch.Year != nil {
			year = *patch.Year
		}
		if !expense.ValidPeriod(month, year) {
			api.Fail(w, http.StatusBadRequest, "validation_error", "month/year is not a valid claim period", middleware.GetRequestID(r.Context()))
			return
		}
	}

	updated, err := h.Service.UpdateClaim(r.Context(), scopedCompanyID(r, user), claim.ID, patch)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_update_failed", "failed to update expense claim", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteClaim(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	claim, ok := h.loadClaimForOwner(w, r, chi.URLParam(r, "claimID"))
	if !ok {
		return
	}
	if err := h.Service.DeleteClaim(r.Context(), scopedCompanyID(r, user), claim.ID); err != nil {
		if errors.Is(err, expense.ErrInvalidState) {
			api.Fail(w, http.StatusBadRequest, "invalid_state", "only draft claims can be deleted", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "claim_delete_failed", "failed to delete expense claim", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	claim, ok := h.loadClaimForOwner(w, r, chi.URLParam(r, "claimID"))
	if !ok {
		return
	}

	submitted, err := h.Service.SubmitClaim(r.Context(), scopedCompanyID(r, user), claim.ID)
	if errors.Is(err, expense.ErrEmptyClaim) {
		api.Fail(w, http.StatusBadRequest, "validation_error", "claim has no items", middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, expense.ErrInvalidState) {
		api.Fail(w, http.StatusBadRequest, "invalid_state", "only draft claims can be submitted", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_submit_failed", "failed to submit expense claim", middleware.GetRequestID(r.Context()))
		return
	}

	h.notifyManagerOf(r, user.CompanyID, submitted.EmployeeID,
		"Expense claim submitted",
		fmt.Sprintf("Claim %s for %.2f awaits your review.", submitted.ClaimNumber, submitted.TotalAmount))

	api.Success(w, submitted, middleware.GetRequestID(r.Context()))
}

type reviewRequest struct {
	Remarks string `json:"remarks"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.reviewClaim(w, r, true)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.reviewClaim(w, r, false)
}

// reviewClaim enforces the manager rule: only the claim employee's reporting
// manager may decide, regardless of the caller's other reports.
func (h *Handler) reviewClaim(w http.ResponseWriter, r *http.Request, approve bool) {
	user, _ := middleware.GetUser(r.Context())
	claimID := chi.URLParam(r, "claimID")

	claim, err := h.Service.GetClaim(r.Context(), user.CompanyID, claimID)
	if errors.Is(err, expense.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "expense claim not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_review_failed", "failed to load expense claim", middleware.GetRequestID(r.Context()))
		return
	}

	self, selfErr := h.selfEmployee(r, user)
	if selfErr != nil || !h.isManagerOf(r, user.CompanyID, claim.EmployeeID, self.ID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "only the reporting manager may review this claim", middleware.GetRequestID(r.Context()))
		return
	}

	var payload reviewRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	decided, err := h.Service.ReviewClaim(r.Context(), user.CompanyID, claimID, user.UserID, payload.Remarks, approve)
	if errors.Is(err, expense.ErrInvalidState) {
		api.Fail(w, http.StatusBadRequest, "invalid_state", "claim is not pending approval", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_review_failed", "failed to review expense claim", middleware.GetRequestID(r.Context()))
		return
	}

	h.notifyClaimant(r, user.CompanyID, decided,
		"Expense claim "+decided.Status,
		fmt.Sprintf("Claim %s was %s.", decided.ClaimNumber, decided.Status))

	api.Success(w, decided, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDisburse(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if !user.IsCompanyAdmin() {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient role", middleware.GetRequestID(r.Context()))
		return
	}

	companyID := scopedCompanyID(r, user)
	claim, err := h.Service.DisburseClaim(r.Context(), companyID, chi.URLParam(r, "claimID"), user.UserID)
	if errors.Is(err, expense.ErrInvalidState) {
		api.Fail(w, http.StatusBadRequest, "invalid_state", "only approved claims can be disbursed", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_disburse_failed", "failed to disburse expense claim", middleware.GetRequestID(r.Context()))
		return
	}

	h.notifyClaimant(r, companyID, claim,
		"Expense claim disbursed",
		fmt.Sprintf("Claim %s for %.2f was disbursed.", claim.ClaimNumber, claim.TotalAmount))

	api.Success(w, claim, middleware.GetRequestID(r.Context()))
}

func (h *Handler) notifyManagerOf(r *http.Request, companyID, employeeID, title, body string) {
	if h.Notify == nil {
		return
	}
	emp, err := h.Core.GetEmployee(r.Context(), companyID, employeeID)
	if err != nil || emp.ReportingManagerID == "" {
		return
	}
	manager, err := h.Core.GetEmployee(r.Context(), companyID, emp.ReportingManagerID)
	if err != nil {
		return
	}
	h.Notify.NotifyByEmail(r.Context(), manager.Email, title, body)
}

func (h *Handler) notifyClaimant(r *http.Request, companyID string, claim expense.Claim, title, body string) {
	if h.Notify == nil {
		return
	}
	emp, err := h.Core.GetEmployee(r.Context(), companyID, claim.EmployeeID)
	if err != nil {
		return
	}
	h.Notify.NotifyByEmail(r.Context(), emp.Email, title, body)
}
