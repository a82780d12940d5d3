package core

import (
	"encoding/json"
	"time"
)

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusOnNotice = "on_notice"
	EmployeeStatusExited   = "exited"
)

var EmployeeStatuses = []string{EmployeeStatusActive, EmployeeStatusOnNotice, EmployeeStatusExited}

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	CompanyID  string    `json:"companyId,omitempty"`
	Status     string    `json:"status"`
	MFAEnabled bool      `json:"mfaEnabled"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Employee struct {
	ID                 string          `json:"id"`
	CompanyID          string          `json:"companyId"`
	EmployeeNumber     string          `json:"employeeNumber"`
	FirstName          string          `json:"firstName"`
	LastName           string          `json:"lastName"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	DepartmentID       string          `json:"departmentId,omitempty"`
	DesignationID      string          `json:"designationId,omitempty"`
	RoleLevelID        string          `json:"roleLevelId,omitempty"`
	ReportingManagerID string          `json:"reportingManagerId,omitempty"`
	JoinDate           *time.Time      `json:"joinDate,omitempty"`
	ExitDate           *time.Time      `json:"exitDate,omitempty"`
	Status             string          `json:"status"`
	Education          json.RawMessage `json:"education,omitempty"`
	Experience         json.RawMessage `json:"experience,omitempty"`
	Documents          json.RawMessage `json:"documents,omitempty"`
	CTCComponents      []CTCAssignment `json:"ctcComponents,omitempty"`
	Assets             json.RawMessage `json:"assets,omitempty"`
	BankInfo           json.RawMessage `json:"bankInfo,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// CTCAssignment is one salary component attached to an employee; payroll
// generation sums these per month.
type CTCAssignment struct {
	ComponentID   string  `json:"componentId,omitempty"`
	Name          string  `json:"name"`
	ComponentType string  `json:"componentType"`
	MonthlyAmount float64 `json:"monthlyAmount"`
}

type Department struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Designation struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type RoleLevel struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	ComponentTypeEarning   = "earning"
	ComponentTypeDeduction = "deduction"
)

type CTCComponent struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"companyId"`
	Name          string    `json:"name"`
	ComponentType string    `json:"componentType"`
	Taxable       bool      `json:"taxable"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Shift struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
}

type Holiday struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
