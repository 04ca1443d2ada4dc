package domain

// Role is the account role returned by GET /users/me.
type Role string

const (
	RoleUser       Role = "User"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

// IsValid checks if the role is one of the defined constants
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin covers Admin and SuperAdmin.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User is an account of the CRM.
type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username,omitempty"`
	Role     Role    `json:"role,omitempty"`
	PhotoURL *string `json:"profilePhotoUrl,omitempty"`
}
