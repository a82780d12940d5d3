package expense

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusDraft, StatusPendingApproval, true},
		{StatusPendingApproval, StatusApproved, true},
		{StatusPendingApproval, StatusRejected, true},
		{StatusApproved, StatusDisbursed, true},

		{StatusDraft, StatusApproved, false},
		{StatusDraft, StatusDisbursed, false},
		{StatusPendingApproval, StatusDisbursed, false},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusPendingApproval, false},
		{StatusRejected, StatusDraft, false},
		{StatusDisbursed, StatusApproved, false},
		{"", StatusDraft, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestComputeTotal(t *testing.T) {
	items := []ClaimItem{
		{Amount: 500},
		{Amount: 300},
		{Amount: 25.50},
	}
	if got := ComputeTotal(items); got != 825.50 {
		t.Fatalf("ComputeTotal = %v, want 825.50", got)
	}
	if got := ComputeTotal(nil); got != 0 {
		t.Fatalf("ComputeTotal(nil) = %v, want 0", got)
	}
}

func TestValidateItemBillMandatory(t *testing.T) {
	expenseType := ExpenseType{BillMandatory: true}

	err := ValidateItem(expenseType, "", ClaimItem{Amount: 100})
	if !errors.Is(err, ErrBillRequired) {
		t.Fatalf("expected ErrBillRequired, got %v", err)
	}

	if err := ValidateItem(expenseType, "", ClaimItem{Amount: 100, BillReference: "INV-42"}); err != nil {
		t.Fatalf("expected bill reference to satisfy the policy, got %v", err)
	}
}

func TestValidateItemFixedLimit(t *testing.T) {
	expenseType := ExpenseType{
		RoleLevelLimits: []RoleLevelLimit{
			{RoleLevelID: "rl1", LimitAmount: 1000, LimitUnit: LimitUnitFixed},
		},
	}

	if err := ValidateItem(expenseType, "rl1", ClaimItem{Amount: 1000}); err != nil {
		t.Fatalf("amount at cap should pass, got %v", err)
	}

	err := ValidateItem(expenseType, "rl1", ClaimItem{Amount: 1000.01})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}

	// A role level with no configured limit has no cap.
	if err := ValidateItem(expenseType, "rl2", ClaimItem{Amount: 99999}); err != nil {
		t.Fatalf("unconfigured role level should be uncapped, got %v", err)
	}

	// Employees without a role level are uncapped too.
	if err := ValidateItem(expenseType, "", ClaimItem{Amount: 99999}); err != nil {
		t.Fatalf("missing role level should be uncapped, got %v", err)
	}
}

func TestValidateItemPerKM(t *testing.T) {
	expenseType := ExpenseType{
		RoleLevelLimits: []RoleLevelLimit{
			{RoleLevelID: "rl1", LimitAmount: 12, LimitUnit: LimitUnitPerKM},
		},
	}

	err := ValidateItem(expenseType, "rl1", ClaimItem{Amount: 120})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("per-km item without distance should fail, got %v", err)
	}

	if err := ValidateItem(expenseType, "rl1", ClaimItem{Amount: 120, DistanceKM: 10}); err != nil {
		t.Fatalf("120 over 10km at 12/km should pass, got %v", err)
	}

	err = ValidateItem(expenseType, "rl1", ClaimItem{Amount: 121, DistanceKM: 10})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("121 over 10km at 12/km should fail, got %v", err)
	}
}

func TestValidateItemPerDay(t *testing.T) {
	expenseType := ExpenseType{
		RoleLevelLimits: []RoleLevelLimit{
			{RoleLevelID: "rl1", LimitAmount: 250, LimitUnit: LimitUnitPerDay},
		},
	}

	if err := ValidateItem(expenseType, "rl1", ClaimItem{Amount: 250}); err != nil {
		t.Fatalf("amount at per-day cap should pass, got %v", err)
	}

	err := ValidateItem(expenseType, "rl1", ClaimItem{Amount: 300})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}

func TestNewClaimNumber(t *testing.T) {
	if got := NewClaimNumber(3, 2026, 7); got != "EXP-202603-0007" {
		t.Fatalf("NewClaimNumber = %q", got)
	}
	if got := NewClaimNumber(12, 2026, 12345); got != "EXP-202612-12345" {
		t.Fatalf("NewClaimNumber = %q", got)
	}
}

func TestValidPeriod(t *testing.T) {
	thisYear := time.Now().Year()

	cases := []struct {
		month, year int
		want        bool
	}{
		{1, thisYear, true},
		{12, thisYear, true},
		{6, 2000, true},
		{6, thisYear + 1, true},
		{0, thisYear, false},
		{13, thisYear, false},
		{6, 1999, false},
		{6, thisYear + 2, false},
	}

	for _, tc := range cases {
		if got := ValidPeriod(tc.month, tc.year); got != tc.want {
			t.Errorf("ValidPeriod(%d, %d) = %v, want %v", tc.month, tc.year, got, tc.want)
		}
	}
}
