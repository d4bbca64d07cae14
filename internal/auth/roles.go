package auth

import "fmt"

// Role is the access-control identity bucket assigned at login.
type Role string

const (
	RoleSuperAdmin        Role = "Super Admin"
	RoleAdmin             Role = "Admin"
	RoleEstateManager     Role = "Estate Manager"
	RoleResident          Role = "Resident"
	RoleSecurityOperative Role = "Security Operative"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleEstateManager,
	RoleResident,
	RoleSecurityOperative,
}

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the five estate roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Administrative reports whether r may act on records it does not own,
// e.g. revoke another resident's authorization. Declared per role, no
// hierarchy is inferred.
func (r Role) Administrative() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEstateManager:
		return true
	}
	return false
}

// ParseRole converts a stored or submitted role string.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}
