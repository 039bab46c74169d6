package domain

import "time"

// UserRole enumerates account roles.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleTechnician UserRole = "TECHNICIAN"
	RoleClient     UserRole = "CLIENT"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleClient:
		return true
	}
	return false
}

// User is the domain model for authenticated accounts.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the resolved acting identity for an operation. The caller
// has already authenticated; the lifecycle engine only sees id and role.
type Principal struct {
	UserID string
	Role   UserRole
}
