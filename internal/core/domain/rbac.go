package domain

import "fmt"

// Role is a closed capability tag attached many-to-many to user accounts.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleSeller     Role = "SELLER"
)

// ParseRole validates a stored role name against the closed set.
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleSuperAdmin, RoleAdmin, RoleSeller:
		return Role(name), nil
	}
	return "", fmt.Errorf("unknown role %q", name)
}
