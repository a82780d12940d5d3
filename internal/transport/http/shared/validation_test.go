package shared

import (
	"net/http/httptest"
	"testing"
)

func TestValidatorCollectsAndSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("name", "", "name is required")
	v.Required("email", "a@b.c", "email is required")
	v.Enum("status", "archived", []string{"active", "inactive"}, "status must be active or inactive")
	v.Positive("amount", 0, "amount must be positive")
	v.IntRange("month", 13, 1, 12, "month must be between 1 and 12")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}

	issues := v.Issues()
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %d: %+v", len(issues), issues)
	}
	for i := 1; i < len(issues); i++ {
		if issues[i-1].Field > issues[i].Field {
			t.Fatalf("issues not sorted by field: %+v", issues)
		}
	}
}

func TestValidatorEnumSkipsEmptyValue(t *testing.T) {
	v := NewValidator()
	v.Enum("status", "", []string{"active"}, "bad status")
	if v.HasIssues() {
		t.Fatalf("empty value should not be an enum violation: %+v", v.Issues())
	}
}

func TestValidatorDate(t *testing.T) {
	v := NewValidator()

	parsed, ok := v.Date("date", "2026-03-02")
	if !ok || parsed.Year() != 2026 || parsed.Month() != 3 || parsed.Day() != 2 {
		t.Fatalf("expected parsed date, got %v ok=%v", parsed, ok)
	}

	if _, ok := v.Date("date", "02/03/2026"); ok {
		t.Fatal("expected slash format to be rejected")
	}
	if _, ok := v.Date("date", ""); ok {
		t.Fatal("expected empty date to be rejected")
	}
	if !v.HasIssues() {
		t.Fatal("expected recorded issues for bad dates")
	}
}

func TestValidatorReject(t *testing.T) {
	clean := NewValidator()
	rec := httptest.NewRecorder()
	if clean.Reject(rec, "req-1") {
		t.Fatal("clean validator should not reject")
	}

	dirty := NewValidator()
	dirty.Add("name", "name is required")
	rec = httptest.NewRecorder()
	if !dirty.Reject(rec, "req-1") {
		t.Fatal("dirty validator should reject")
	}
	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestParseDateAcceptsRFC3339(t *testing.T) {
	parsed, err := ParseDate("2026-03-02T10:30:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Hour() != 10 {
		t.Fatalf("expected RFC3339 time preserved, got %v", parsed)
	}
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/notifications?limit=500&offset=20", nil)
	p := ParsePagination(r, 50, 200)
	if p.Limit != 200 {
		t.Fatalf("limit should clamp to max, got %d", p.Limit)
	}
	if p.Offset != 20 {
		t.Fatalf("offset = %d, want 20", p.Offset)
	}

	r = httptest.NewRequest("GET", "/notifications", nil)
	p = ParsePagination(r, 50, 200)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("defaults not applied: %+v", p)
	}
}
