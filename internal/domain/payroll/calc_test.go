package payroll

import (
	"testing"

	"hrms/internal/domain/core"
)

func TestComputePay(t *testing.T) {
	components := []core.CTCAssignment{
		{Name: "Basic", ComponentType: core.ComponentTypeEarning, MonthlyAmount: 50000},
		{Name: "HRA", ComponentType: core.ComponentTypeEarning, MonthlyAmount: 20000},
		{Name: "PF", ComponentType: core.ComponentTypeDeduction, MonthlyAmount: 1800},
		{Name: "Professional Tax", ComponentType: core.ComponentTypeDeduction, MonthlyAmount: 200},
	}

	gross, deductions, net := ComputePay(components)
	if gross != 70000 {
		t.Fatalf("gross = %v, want 70000", gross)
	}
	if deductions != 2000 {
		t.Fatalf("deductions = %v, want 2000", deductions)
	}
	if net != 68000 {
		t.Fatalf("net = %v, want 68000", net)
	}
}

func TestComputePayIgnoresUnknownComponentTypes(t *testing.T) {
	components := []core.CTCAssignment{
		{Name: "Basic", ComponentType: core.ComponentTypeEarning, MonthlyAmount: 1000},
		{Name: "Mystery", ComponentType: "bonus", MonthlyAmount: 500},
	}

	gross, deductions, net := ComputePay(components)
	if gross != 1000 || deductions != 0 || net != 1000 {
		t.Fatalf("got gross=%v deductions=%v net=%v", gross, deductions, net)
	}
}

func TestComputePayEmpty(t *testing.T) {
	gross, deductions, net := ComputePay(nil)
	if gross != 0 || deductions != 0 || net != 0 {
		t.Fatalf("expected zeros, got %v %v %v", gross, deductions, net)
	}
}
