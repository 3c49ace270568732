package domain

import (
	"fmt"
	"time"
)

// UserRole is the closed set of account roles.
type UserRole string

const (
	RoleCustomer UserRole = "Customer"
	RoleAdmin    UserRole = "Admin"
)

// ParseUserRole accepts only the known roles.
func ParseUserRole(raw string) (UserRole, error) {
	switch UserRole(raw) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown user role %q", raw)
	}
}

// Valid reports whether r is one of the defined roles.
func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User is an account able to authenticate against the API.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
