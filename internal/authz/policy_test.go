package authz

import (
	"testing"

	"github.com/manageday-dev/manageday/internal/models"
)

func TestRoleOf(t *testing.T) {
	tests := []struct {
		name     string
		identity *models.Identity
		want     Role
	}{
		{
			name:     "superuser is admin",
			identity: &models.Identity{ID: 1, Email: "admin@example.com", IsSuperuser: true},
			want:     RoleAdmin,
		},
		{
			name:     "regular user is employee",
			identity: &models.Identity{ID: 2, Email: "user@example.com", IsSuperuser: false},
			want:     RoleEmployee,
		},
		{
			name:     "nil identity is employee",
			identity: nil,
			want:     RoleEmployee,
		},
		{
			name:     "active flag does not influence role",
			identity: &models.Identity{ID: 3, Email: "user@example.com", IsActive: true},
			want:     RoleEmployee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleOf(tt.identity); got != tt.want {
				t.Errorf("RoleOf() = %q, want %q", got, tt.want)
			}
		})
	}
}
