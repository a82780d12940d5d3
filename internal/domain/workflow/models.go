package workflow

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var Statuses = []string{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

type Workflow struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"companyId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssignedTo  string     `json:"assignedTo"`
	AssignedBy  string     `json:"assignedBy"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Notes       string     `json:"notes,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Patch carries every updatable field; an employee caller only gets
// progress, status and notes applied, the rest is dropped before the store
// sees it.
type Patch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AssignedTo  *string    `json:"assignedTo"`
	Status      *string    `json:"status"`
	Progress    *int       `json:"progress"`
	Notes       *string    `json:"notes"`
	DueDate     *time.Time `json:"dueDate"`
}

// EmployeeFields strips a patch down to what an assignee may change.
// Disallowed fields are silently ignored.
func (p Patch) EmployeeFields() Patch {
	return Patch{Status: p.Status, Progress: p.Progress, Notes: p.Notes}
}
