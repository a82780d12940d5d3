package auth

import "testing"

func TestValidRole(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{RoleSuperAdmin, true},
		{RoleCompanyAdmin, true},
		{RoleEmployee, true},
		{"ADMIN", false},
		{"", false},
		{"employee", false},
	}

	for _, tc := range cases {
		if got := ValidRole(tc.role); got != tc.want {
			t.Errorf("ValidRole(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestCompanyScope(t *testing.T) {
	cases := []struct {
		name      string
		user      UserContext
		companyID string
		want      bool
	}{
		{"super admin reaches any company", UserContext{Role: RoleSuperAdmin}, "c-other", true},
		{"admin within own company", UserContext{Role: RoleCompanyAdmin, CompanyID: "c1"}, "c1", true},
		{"admin blocked cross company", UserContext{Role: RoleCompanyAdmin, CompanyID: "c1"}, "c2", false},
		{"employee within own company", UserContext{Role: RoleEmployee, CompanyID: "c1"}, "c1", true},
		{"employee blocked cross company", UserContext{Role: RoleEmployee, CompanyID: "c1"}, "c2", false},
		{"empty company id never matches", UserContext{Role: RoleEmployee, CompanyID: ""}, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CompanyScope(tc.user, tc.companyID); got != tc.want {
				t.Fatalf("CompanyScope = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRoleHelpers(t *testing.T) {
	super := UserContext{Role: RoleSuperAdmin}
	admin := UserContext{Role: RoleCompanyAdmin}
	employee := UserContext{Role: RoleEmployee}

	if !super.IsSuperAdmin() || admin.IsSuperAdmin() || employee.IsSuperAdmin() {
		t.Fatal("IsSuperAdmin misclassified a role")
	}
	if !super.IsCompanyAdmin() || !admin.IsCompanyAdmin() || employee.IsCompanyAdmin() {
		t.Fatal("IsCompanyAdmin misclassified a role")
	}
}
