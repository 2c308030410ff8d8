package domain

import "time"

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Email        string
	Name         string
	CPF          TaxID
	PasswordHash string
	IsActive     bool
	IsDeleted    bool

	Street      *string
	PostalCode  *string
	City        *string
	State       *string
	PhoneNumber *string

	// Password recovery state. The code is nullable; both attempt counters
	// belong to independent thresholds and are reset separately.
	RecoverPasswordCode         *string
	RecoverPasswordCodeCheck    bool
	RecoverPasswordCodeAttempts int
	RecoverPasswordAttempts     int

	Roles []Role

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PasswordContext carries user attributes a password must not resemble.
type PasswordContext struct {
	Name  string
	Email string
}

// HasRole reports whether any of the wanted roles is attached to the user.
func (u User) HasRole(wanted ...Role) bool {
	for _, have := range u.Roles {
		for _, w := range wanted {
			if have == w {
				return true
			}
		}
	}
	return false
}

// RoleNames returns the attached role names in assignment order.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, string(r))
	}
	return names
}
