package expensehandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/expense"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type itemRequest struct {
	ExpenseTypeID string  `json:"expenseTypeId"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	BillReference string  `json:"billReference"`
	FromLocation  string  `json:"fromLocation"`
	ToLocation    string  `json:"toLocation"`
	DistanceKM    float64 `json:"distanceKm"`
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	claim, _, ok := h.loadClaimForViewer(w, r, chi.URLParam(r, "claimID"))
	if !ok {
		return
	}
	items, err := h.Service.ListItems(r.Context(), claim.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "item_list_failed", "failed to list claim items", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

// loadDraftClaimForOwner gates item mutation: the claim must belong to the
// caller and still be a draft.
func (h *Handler) loadDraftClaimForOwner(w http.ResponseWriter, r *http.Request) (expense.Claim, bool) {
	claim, ok := h.loadClaimForOwner(w, r, chi.URLParam(r, "claimID"))
	if !ok {
		return expense.Claim{}, false
	}
	if claim.Status != expense.StatusDraft {
		api.Fail(w, http.StatusBadRequest, "invalid_state", "items can only change while the claim is a draft", middleware.GetRequestID(r.Context()))
		return expense.Claim{}, false
	}
	return claim, true
}

// buildItem validates the payload against the expense type policy for the
// claim employee's role level.
func (h *Handler) buildItem(w http.ResponseWriter, r *http.Request, claim expense.Claim, payload itemRequest) (expense.ClaimItem, bool) {
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	v.Required("expenseTypeId", payload.ExpenseTypeID, "expenseTypeId is required")
	v.Positive("amount", payload.Amount, "amount must be positive")
	date, dateOK := v.Date("date", payload.Date)
	if v.Reject(w, middleware.GetRequestID(r.Context())) || !dateOK {
		return expense.ClaimItem{}, false
	}

	expenseType, err := h.Service.GetType(r.Context(), user.CompanyID, payload.ExpenseTypeID)
	if errors.Is(err, expense.ErrNotFound) {
		api.Fail(w, http.StatusBadRequest, "validation_error", "unknown expense type", middleware.GetRequestID(r.Context()))
		return expense.ClaimItem{}, false
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "item_validate_failed", "failed to load expense type", middleware.GetRequestID(r.Context()))
		return expense.ClaimItem{}, false
	}

	item := expense.ClaimItem{
		ClaimID:       claim.ID,
		ExpenseTypeID: payload.ExpenseTypeID,
		Date:          date,
		Amount:        payload.Amount,
		Description:   payload.Description,
		BillReference: payload.BillReference,
		FromLocation:  payload.FromLocation,
		ToLocation:    payload.ToLocation,
		DistanceKM:    payload.DistanceKM,
	}

	owner, err := h.Core.GetEmployee(r.Context(), user.CompanyID, claim.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "item_validate_failed", "failed to load claim employee", middleware.GetRequestID(r.Context()))
		return expense.ClaimItem{}, false
	}
	if err := expense.ValidateItem(expenseType, owner.RoleLevelID, item); err != nil {
		code := "validation_error"
		if errors.Is(err, expense.ErrLimitExceeded) {
			code = "limit_exceeded"
		}
		if errors.Is(err, expense.ErrBillRequired) {
			code = "bill_required"
		}
		api.Fail(w, http.StatusBadRequest, code, err.Error(), middleware.GetRequestID(r.Context()))
		return expense.ClaimItem{}, false
	}
	return item, true
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	claim, ok := h.loadDraftClaimForOwner(w, r)
	if !ok {
		return
	}

	var payload itemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	item, ok := h.buildItem(w, r, claim, payload)
	if !ok {
		return
	}

	created, err := h.Service.AddItem(r.Context(), claim.ID, item)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "item_create_failed", "failed to add claim item", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	claim, ok := h.loadDraftClaimForOwner(w, r)
	if !ok {
		return
	}

	// The item must belong to the claim in the path, not just exist.
	itemID := chi.URLParam(r, "itemID")
	existing, err := h.Service.GetItem(r.Context(), itemID)
	if errors.Is(err, expense.ErrNotFound) || (err == nil && existing.ClaimID != claim.ID) {
		api.Fail(w, http.StatusNotFound, "not_found", "claim item not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "item_update_failed", "failed to load claim item", middleware.GetRequestID(r.Context()))
		return
	}

	var payload itemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	item, ok := h.buildItem(w, r, claim, payload)
	if !ok {
		return
	}

	updated, err := h.Service.UpdateItem(r.Context(), itemID, item)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "item_update_failed", "failed to update claim item", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	claim, ok := h.loadDraftClaimForOwner(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteItem(r.Context(), chi.URLParam(r, "itemID"), claim.ID); err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "claim item not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "item_delete_failed", "failed to delete claim item", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
