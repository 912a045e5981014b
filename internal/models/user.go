package models

// Role is a staff access level. Roles are hierarchical: ADMIN covers
// MANAGER, MANAGER covers STAFF.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}

// HasRole reports whether the role set grants at least the capabilities
// of want, following the ADMIN ⊇ MANAGER ⊇ STAFF hierarchy.
func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		switch r {
		case RoleAdmin:
			return true
		case RoleManager:
			if want == RoleManager || want == RoleStaff {
				return true
			}
		case RoleStaff:
			if want == RoleStaff {
				return true
			}
		}
	}
	return false
}

// User is a staff account. PasswordHash is never serialized.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Roles        []Role `json:"roles"`
}
