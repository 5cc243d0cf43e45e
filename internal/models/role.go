package models

import "fmt"

// Role is the privilege level a user holds within a tenant. Roles form a
// total order: OWNER > ADMIN > MEMBER > VIEWER.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

var roleRanks = map[Role]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// ParseRole converts a string into a Role, rejecting unknown values.
func ParseRole(value string) (Role, error) {
	role := Role(value)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether the role is one of the known enum values.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the role's position in the privilege order; zero for unknown roles.
func (r Role) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether the role ranks equal to or above the required role.
func (r Role) AtLeast(required Role) bool {
	return r.Rank() >= required.Rank()
}

func (r Role) String() string {
	return string(r)
}
