package auth

const (
	RoleSuperAdmin   = "SUPER_ADMIN"
	RoleCompanyAdmin = "COMPANY_ADMIN"
	RoleEmployee     = "EMPLOYEE"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// UserContext is the resolved identity attached to every authenticated request.
type UserContext struct {
	UserID    string
	Email     string
	Role      string
	CompanyID string
	SessionID string
}

func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleEmployee:
		return true
	}
	return false
}

func (u UserContext) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

func (u UserContext) IsCompanyAdmin() bool {
	return u.Role == RoleCompanyAdmin || u.Role == RoleSuperAdmin
}

// CompanyScope is the single authorization decision for tenant-scoped
// resources: a super admin may touch any company, everyone else only their
// own. Every handler that loads an entity mid-request must re-check the
// loaded entity's company id through this function; path-level checks alone
// do not cover ids fetched from the database.
func CompanyScope(user UserContext, companyID string) bool {
	if user.IsSuperAdmin() {
		return true
	}
	return user.CompanyID != "" && user.CompanyID == companyID
}
