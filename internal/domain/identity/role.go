package identity

import "github.com/calculation/backend/internal/domain/shared"

// Role is the access level of a user
type Role string

const (
	RoleUser       Role = "ROLE_USER"
	RoleAdmin      Role = "ROLE_ADMIN"
	RoleSuperAdmin Role = "ROLE_SUPER_ADMIN"
)

var roleRanks = map[Role]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// ParseRole converts a string into a known role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRanks[r]; !ok {
		return "", shared.NewDomainError("INVALID_ROLE", "Unknown role: "+s)
	}
	return r, nil
}

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Includes reports whether r grants at least the permissions of other.
// A super admin includes admin, which includes user.
func (r Role) Includes(other Role) bool {
	return roleRanks[r] >= roleRanks[other] && roleRanks[other] > 0
}

// Roles returns every known role, lowest first
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
}
