package authgate

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// DefaultRole is the least privileged role, assigned when a signup
// draft carries no role.
func DefaultRole() UserRole {
	return RoleUser
}

// RoleIn is the membership predicate behind restrictTo: it never
// consults the store, only the closed role set.
func RoleIn(role UserRole, allowed ...UserRole) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

// RoleIsAtLeast checks the role against the fixed hierarchy.
func RoleIsAtLeast(role, minRole UserRole) bool {
	hierarchy := map[UserRole]int{
		RoleUser:  0,
		RoleAdmin: 1,
	}

	current, ok := hierarchy[role]
	if !ok {
		return false
	}

	required, ok := hierarchy[minRole]
	if !ok {
		return false
	}

	return current >= required
}

// AllRoles returns the predefined roles in hierarchical order
func AllRoles() []UserRole {
	return []UserRole{RoleUser, RoleAdmin}
}
