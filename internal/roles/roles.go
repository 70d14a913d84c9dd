// Package roles defines the account role hierarchy and the management
// permissions derived from it.
package roles

import (
	"fmt"
	"strings"
)

// Role identifies an account's position in the hierarchy.
type Role string

const (
	// RoleTopAdmin is the highest role, created once during first-run setup.
	RoleTopAdmin Role = "TOP_ADMIN"
	// RoleAdmin manages clerks and resident accounts.
	RoleAdmin Role = "ADMIN"
	// RoleClerk handles day-to-day record operations.
	RoleClerk Role = "CLERK"
	// RoleResident is a resident-facing self-service account.
	RoleResident Role = "RESIDENT"
)

// manageable maps each role to the set of roles strictly below it.
// Both management and account creation consult this single table.
var manageable = map[Role][]Role{
	RoleTopAdmin: {RoleAdmin, RoleClerk, RoleResident},
	RoleAdmin:    {RoleClerk, RoleResident},
	RoleClerk:    {RoleResident},
	RoleResident: {},
}

// seniority orders roles for threshold checks; higher is more senior.
var seniority = map[Role]int{
	RoleTopAdmin: 4,
	RoleAdmin:    3,
	RoleClerk:    2,
	RoleResident: 1,
}

// CanManage reports whether acting is strictly senior to target.
// Unknown roles and self-management return false.
func CanManage(acting, target Role) bool {
	for _, r := range manageable[acting] {
		if r == target {
			return true
		}
	}
	return false
}

// CanCreateRole reports whether acting may create or assign accounts of
// the target role. Same table as CanManage.
func CanCreateRole(acting, target Role) bool {
	return CanManage(acting, target)
}

// IsStaff reports whether the role belongs to barangay staff.
func IsStaff(r Role) bool {
	return r == RoleClerk || r == RoleAdmin || r == RoleTopAdmin
}

// AtLeast reports whether r is at or above the minimum role.
func AtLeast(r, minimum Role) bool {
	return seniority[r] >= seniority[minimum] && seniority[r] > 0
}

// All returns the known roles ordered from most to least senior.
func All() []Role {
	return []Role{RoleTopAdmin, RoleAdmin, RoleClerk, RoleResident}
}

// Parse converts a stored or submitted role string into a Role.
func Parse(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleTopAdmin:
		return RoleTopAdmin, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleClerk:
		return RoleClerk, nil
	case RoleResident:
		return RoleResident, nil
	default:
		return "", fmt.Errorf("roles: unknown role %q", s)
	}
}
