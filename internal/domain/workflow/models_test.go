package workflow

import (
	"testing"
	"time"
)

func TestEmployeeFieldsStripsAdminOnlyChanges(t *testing.T) {
	title := "new title"
	assignee := "emp-2"
	status := StatusInProgress
	progress := 40
	notes := "halfway there"
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	patch := Patch{
		Title:       &title,
		Description: &title,
		AssignedTo:  &assignee,
		Status:      &status,
		Progress:    &progress,
		Notes:       &notes,
		DueDate:     &due,
	}

	got := patch.EmployeeFields()

	if got.Title != nil || got.Description != nil || got.AssignedTo != nil || got.DueDate != nil {
		t.Fatalf("expected admin-only fields to be dropped: %+v", got)
	}
	if got.Status == nil || *got.Status != status {
		t.Fatalf("status should survive: %+v", got.Status)
	}
	if got.Progress == nil || *got.Progress != progress {
		t.Fatalf("progress should survive: %+v", got.Progress)
	}
	if got.Notes == nil || *got.Notes != notes {
		t.Fatalf("notes should survive: %+v", got.Notes)
	}
}
