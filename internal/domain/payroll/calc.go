package payroll

import "hrms/internal/domain/core"

// ComputePay folds an employee's monthly CTC assignments into gross,
// deduction and net figures.
func ComputePay(components []core.CTCAssignment) (gross, deductions, net float64) {
	for _, component := range components {
		switch component.ComponentType {
		case core.ComponentTypeEarning:
			gross += component.MonthlyAmount
		case core.ComponentTypeDeduction:
			deductions += component.MonthlyAmount
		}
	}
	net = gross - deductions
	return gross, deductions, net
}
