package expense

import (
	"fmt"
	"strings"
	"time"
)

// ComputeTotal sums item amounts; claims never trust a client-supplied total.
func ComputeTotal(items []ClaimItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Amount
	}
	return total
}

// CanTransition encodes the claim state machine:
// draft -> pending_approval -> approved -> disbursed, with
// pending_approval -> rejected as the terminal alternate branch.
func CanTransition(from, to string) bool {
	switch from {
	case StatusDraft:
		return to == StatusPendingApproval
	case StatusPendingApproval:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusDisbursed
	}
	return false
}

// LimitFor returns the limit attached to the employee's role level, if any.
func (t ExpenseType) LimitFor(roleLevelID string) (RoleLevelLimit, bool) {
	if roleLevelID == "" {
		return RoleLevelLimit{}, false
	}
	for _, limit := range t.RoleLevelLimits {
		if limit.RoleLevelID == roleLevelID {
			return limit, true
		}
	}
	return RoleLevelLimit{}, false
}

// ValidateItem checks an item against the expense type's policy: bill
// mandatory and the role-level spending limit in its unit. A missing limit
// for the employee's role level means no cap.
func ValidateItem(expenseType ExpenseType, roleLevelID string, item ClaimItem) error {
	if expenseType.BillMandatory && strings.TrimSpace(item.BillReference) == "" {
		return ErrBillRequired
	}

	limit, ok := expenseType.LimitFor(roleLevelID)
	if !ok || limit.LimitAmount <= 0 {
		return nil
	}

	var allowed float64
	switch limit.LimitUnit {
	case LimitUnitPerKM:
		if item.DistanceKM <= 0 {
			return fmt.Errorf("%w: distance required for per-km expense", ErrLimitExceeded)
		}
		allowed = limit.LimitAmount * item.DistanceKM
	case LimitUnitPerDay, LimitUnitFixed:
		allowed = limit.LimitAmount
	default:
		return nil
	}

	if item.Amount > allowed {
		return fmt.Errorf("%w: %.2f over cap %.2f", ErrLimitExceeded, item.Amount, allowed)
	}
	return nil
}

// NewClaimNumber builds a human-readable claim reference for a period.
func NewClaimNumber(month, year int, seq int64) string {
	return fmt.Sprintf("EXP-%04d%02d-%04d", year, month, seq)
}

// ValidPeriod bounds month/year to sane claim periods.
func ValidPeriod(month, year int) bool {
	if month < 1 || month > 12 {
		return false
	}
	return year >= 2000 && year <= time.Now().Year()+1
}
