package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin      UserRole = "SUPERADMIN"
	RoleAdmin           UserRole = "ADMIN"
	RoleFacilityManager UserRole = "FACILITY_MANAGER"
	RoleStaff           UserRole = "STAFF"
)

// IsGlobal reports whether the role sees every facility.
func (r UserRole) IsGlobal() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleFacilityManager, RoleStaff:
		return true
	}
	return false
}

// Viewer describes who is reading shift data.
type Viewer struct {
	UserID      string
	Role        UserRole
	FacilityIDs []string
}

// CanSeeFacility reports whether the viewer may see instances of facilityID.
func (v Viewer) CanSeeFacility(facilityID string) bool {
	if v.Role.IsGlobal() {
		return true
	}
	for _, id := range v.FacilityIDs {
		if id == facilityID {
			return true
		}
	}
	return false
}
