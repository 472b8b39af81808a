package authz

import "github.com/manageday-dev/manageday/internal/models"

// Role is the coarse authorization level derived from an identity.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// RoleOf derives the role from the identity's superuser flag. A nil identity
// maps to the least-privileged role. No other signal may influence the
// result; route guards rely on this being a pure function of the identity.
func RoleOf(identity *models.Identity) Role {
	if identity != nil && identity.IsSuperuser {
		return RoleAdmin
	}
	return RoleEmployee
}
