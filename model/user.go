package model

import "time"

// Role is a closed enumeration. Authorization decisions are made against
// the authority sets below rather than free-form strings.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Authorities returns the permission set granted by the role. Admins
// carry the user authority as well, so admin tokens pass user routes.
func (r Role) Authorities() []string {
	switch r {
	case RoleAdmin:
		return []string{"ADMIN", "USER"}
	case RoleUser:
		return []string{"USER"}
	default:
		return nil
	}
}

// HasAuthority reports whether the role grants the authority required by
// the given role.
func (r Role) HasAuthority(required Role) bool {
	if r == required {
		return true
	}
	return r == RoleAdmin && required == RoleUser
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the authenticated principal. The core treats a loaded user as a
// read-only value; only the repository mutates persisted records.
type User struct {
	ID        int       `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
}
