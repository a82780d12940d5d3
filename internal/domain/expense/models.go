package expense

import "time"

const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusDisbursed       = "disbursed"
)

var ClaimStatuses = []string{StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected, StatusDisbursed}

const (
	LimitUnitFixed  = "fixed"
	LimitUnitPerKM  = "per_km"
	LimitUnitPerDay = "per_day"
)

var LimitUnits = []string{LimitUnitFixed, LimitUnitPerKM, LimitUnitPerDay}

const DefaultRejectRemarks = "Rejected by manager"

// RoleLevelLimit caps how much an employee at a given role level may claim
// for one expense type. The unit decides how the cap applies to an item.
type RoleLevelLimit struct {
	RoleLevelID string  `json:"roleLevelId"`
	LimitAmount float64 `json:"limitAmount"`
	LimitUnit   string  `json:"limitUnit"`
}

type ExpenseType struct {
	ID               string           `json:"id"`
	CompanyID        string           `json:"companyId"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	RoleLevelLimits  []RoleLevelLimit `json:"roleLevelLimits"`
	EnableGoogleMaps bool             `json:"enableGoogleMaps"`
	BillMandatory    bool             `json:"billMandatory"`
	ApprovalRequired bool             `json:"approvalRequired"`
	CreatedAt        time.Time        `json:"createdAt"`
}

type Claim struct {
	ID                string     `json:"id"`
	CompanyID         string     `json:"companyId"`
	EmployeeID        string     `json:"employeeId"`
	ClaimNumber       string     `json:"claimNumber"`
	Month             int        `json:"month"`
	Year              int        `json:"year"`
	TotalAmount       float64    `json:"totalAmount"`
	Status            string     `json:"status"`
	SubmittedAt       *time.Time `json:"submittedAt,omitempty"`
	ManagerReviewedBy string     `json:"managerReviewedBy,omitempty"`
	ManagerReviewedAt *time.Time `json:"managerReviewedAt,omitempty"`
	ManagerRemarks    string     `json:"managerRemarks,omitempty"`
	AdminDisbursedBy  string     `json:"adminDisbursedBy,omitempty"`
	AdminDisbursedAt  *time.Time `json:"adminDisbursedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type ClaimItem struct {
	ID            string    `json:"id"`
	ClaimID       string    `json:"claimId"`
	ExpenseTypeID string    `json:"expenseTypeId"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description,omitempty"`
	BillReference string    `json:"billReference,omitempty"`
	FromLocation  string    `json:"fromLocation,omitempty"`
	ToLocation    string    `json:"toLocation,omitempty"`
	DistanceKM    float64   `json:"distanceKm,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ClaimPatch is the PATCH whitelist. Status, ownership, and the derived
// total are never client-writable.
type ClaimPatch struct {
	ClaimNumber *string `json:"claimNumber"`
	Month       *int    `json:"month"`
	Year        *int    `json:"year"`
}

type ListFilter struct {
	View       string
	EmployeeID string
	Status     string
}
