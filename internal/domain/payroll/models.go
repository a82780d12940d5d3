package payroll

import (
	"errors"
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected}

var (
	ErrNotFound     = errors.New("payroll record not found")
	ErrInvalidState = errors.New("payroll record is not in a state that allows this")
	ErrNotPublished = errors.New("payroll record is not published")
)

type Record struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"companyId"`
	EmployeeID string    `json:"employeeId"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
	GrossPay   float64   `json:"grossPay"`
	Deductions float64   `json:"deductions"`
	NetPay     float64   `json:"netPay"`
	Status     string    `json:"status"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Item struct {
	ID            string  `json:"id"`
	RecordID      string  `json:"recordId"`
	Name          string  `json:"name"`
	ComponentType string  `json:"componentType"`
	Amount        float64 `json:"amount"`
}

type GenerateResult struct {
	Generated []Record `json:"generated"`
	Skipped   []string `json:"skippedEmployeeIds"`
}
