package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hrms/internal/domain/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func requestAs(user *auth.UserContext) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	if user != nil {
		r = r.WithContext(WithUser(r.Context(), *user))
	}
	return r
}

func TestRequireAuth(t *testing.T) {
	guarded := RequireAuth(okHandler())

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, requestAs(nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request: got %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, requestAs(&auth.UserContext{UserID: "u1", Role: auth.RoleEmployee}))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authenticated request: got %d, want 204", rec.Code)
	}
}

func TestRequireCompanyAdmin(t *testing.T) {
	guarded := RequireCompanyAdmin(okHandler())

	cases := []struct {
		role string
		want int
	}{
		{auth.RoleEmployee, http.StatusForbidden},
		{auth.RoleCompanyAdmin, http.StatusNoContent},
		{auth.RoleSuperAdmin, http.StatusNoContent},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, requestAs(&auth.UserContext{UserID: "u1", Role: tc.role}))
		if rec.Code != tc.want {
			t.Errorf("role %s: got %d, want %d", tc.role, rec.Code, tc.want)
		}
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	guarded := RequireSuperAdmin(okHandler())

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, requestAs(&auth.UserContext{UserID: "u1", Role: auth.RoleCompanyAdmin}))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("company admin: got %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, requestAs(&auth.UserContext{UserID: "u1", Role: auth.RoleSuperAdmin}))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("super admin: got %d, want 204", rec.Code)
	}
}
