package company

import "time"

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusInactive  = "inactive"
)

var Statuses = []string{StatusActive, StatusSuspended, StatusInactive}

type Company struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	Plan         string    `json:"plan"`
	MaxEmployees int       `json:"maxEmployees"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Patch carries the only fields a company update may touch. Tenant identity
// is never client-writable.
type Patch struct {
	Name         *string `json:"name"`
	Status       *string `json:"status"`
	Plan         *string `json:"plan"`
	MaxEmployees *int    `json:"maxEmployees"`
}
