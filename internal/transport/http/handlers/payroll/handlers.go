package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/company"
	"hrms/internal/domain/core"
	"hrms/internal/domain/payroll"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service   *payroll.Service
	Core      *core.Store
	Companies *company.Store
}

func NewHandler(service *payroll.Service, coreStore *core.Store, companies *company.Store) *Handler {
	return &Handler{Service: service, Core: coreStore, Companies: companies}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireCompanyAdmin).Post("/generate", h.handleGenerate)
		r.With(middleware.RequireCompanyAdmin).Put("/{recordID}/approve", h.handleApprove)
		r.With(middleware.RequireCompanyAdmin).Put("/{recordID}/reject", h.handleReject)
		r.With(middleware.RequireCompanyAdmin).Put("/{recordID}/publish", h.handlePublish)
		r.With(middleware.RequireAuth).Get("/{recordID}/items", h.handleItems)
		r.With(middleware.RequireAuth).Get("/{recordID}/payslip", h.handlePayslip)
		r.With(middleware.RequireCompanyAdmin).Delete("/{recordID}", h.handleDelete)
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

	employeeID := r.URL.Query().Get("employeeId")
	publishedOnly := false
	if !user.IsCompanyAdmin() {
		self, err := h.selfEmployee(r, user)
		if err != nil {
			api.Success(w, []payroll.Record{}, middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = self.ID
		publishedOnly = true
	}

	records, err := h.Service.List(r.Context(), scopedCompanyID(r, user), employeeID, publishedOnly)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_list_failed", "failed to list payroll records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

type generateRequest struct {
	Month       int      `json:"month"`
	Year        int      `json:"year"`
	EmployeeIDs []string `json:"employeeIds"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload generateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.IntRange("month", payload.Month, 1, 12, "month must be 1-12")
	v.IntRange("year", payload.Year, 2000, 2100, "year out of range")
	if len(payload.EmployeeIDs) == 0 {
		v.Add("employeeIds", "at least one employee is required")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.Generate(r.Context(), scopedCompanyID(r, user), payload.Month, payload.Year, payload.EmployeeIDs)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_generate_failed", "failed to generate payroll", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, payroll.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, payroll.StatusRejected)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	user, _ := middleware.GetUser(r.Context())

	rec, err := h.Service.SetStatus(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "recordID"), status)
	if errors.Is(err, payroll.ErrInvalidState) {
		api.Fail(w, http.StatusBadRequest, "invalid_state", "payroll record is not pending", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_update_failed", "failed to update payroll record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	rec, err := h.Service.Publish(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "recordID"))
	if errors.Is(err, payroll.ErrInvalidState) {
		api.Fail(w, http.StatusBadRequest, "invalid_state", "only approved payroll can be published", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_publish_failed", "failed to publish payroll record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

// loadRecordForViewer enforces read access: admins see everything in the
// company, employees only their own published records.
func (h *Handler) loadRecordForViewer(w http.ResponseWriter, r *http.Request) (payroll.Record, bool) {
	user, _ := middleware.GetUser(r.Context())

	rec, err := h.Service.Get(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "recordID"))
	if errors.Is(err, payroll.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", middleware.GetRequestID(r.Context()))
		return payroll.Record{}, false
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_get_failed", "failed to load payroll record", middleware.GetRequestID(r.Context()))
		return payroll.Record{}, false
	}

	if !user.IsCompanyAdmin() {
		self, selfErr := h.selfEmployee(r, user)
		if selfErr != nil || self.ID != rec.EmployeeID {
			api.Fail(w, http.StatusForbidden, "forbidden", "not your payroll record", middleware.GetRequestID(r.Context()))
			return payroll.Record{}, false
		}
		if !rec.Published {
			api.Fail(w, http.StatusForbidden, "forbidden", "payroll record is not published", middleware.GetRequestID(r.Context()))
			return payroll.Record{}, false
		}
	}
	return rec, true
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadRecordForViewer(w, r)
	if !ok {
		return
	}
	items, err := h.Service.ListItems(r.Context(), rec.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_items_failed", "failed to list payroll items", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	rec, ok := h.loadRecordForViewer(w, r)
	if !ok {
		return
	}
	if !rec.Published {
		api.Fail(w, http.StatusBadRequest, "invalid_state", "payslips are only available for published payroll", middleware.GetRequestID(r.Context()))
		return
	}

	items, err := h.Service.ListItems(r.Context(), rec.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to build payslip", middleware.GetRequestID(r.Context()))
		return
	}
	companyID := scopedCompanyID(r, user)
	emp, err := h.Core.GetEmployee(r.Context(), companyID, rec.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to build payslip", middleware.GetRequestID(r.Context()))
		return
	}
	c, err := h.Companies.Get(r.Context(), companyID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to build payslip", middleware.GetRequestID(r.Context()))
		return
	}

	pdf, err := payroll.BuildPayslipPDF(c.Name, emp.FirstName+" "+emp.LastName, rec, items)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to build payslip", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%04d-%02d.pdf", rec.Year, rec.Month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.Delete(r.Context(), scopedCompanyID(r, user), chi.URLParam(r, "recordID")); err != nil {
		if errors.Is(err, payroll.ErrInvalidState) {
			api.Fail(w, http.StatusBadRequest, "invalid_state", "only pending payroll can be deleted", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payroll_delete_failed", "failed to delete payroll record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
