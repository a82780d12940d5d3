package leave

import (
	"errors"
	"time"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusCancelled}

var (
	ErrNotFound     = errors.New("leave record not found")
	ErrInvalidState = errors.New("leave request is not pending")
)

type LeaveType struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"companyId"`
	Name       string    `json:"name"`
	Code       string    `json:"code,omitempty"`
	IsPaid     bool      `json:"isPaid"`
	MaxPerYear float64   `json:"maxPerYear"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Request struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"companyId"`
	EmployeeID  string     `json:"employeeId"`
	LeaveTypeID string     `json:"leaveTypeId"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	Days        float64    `json:"days"`
	Reason      string     `json:"reason,omitempty"`
	Status      string     `json:"status"`
	ReviewedBy  string     `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// CalculateDays returns the inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return end.Sub(start).Hours()/24 + 1, nil
}
