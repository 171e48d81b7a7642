// Package identity resolves subjects to principals and validates login
// credentials. It owns the user model; authorization semantics live in
// internal/authz.
package identity

import "aegis/internal/authz"

// User is an account in the identity store.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         authz.Role
	Active       bool
}

// Principal projects the authorization-relevant view of the user. The
// returned value is immutable within a single check.
func (u *User) Principal() authz.Principal {
	return authz.Principal{
		ID:     u.ID,
		Role:   u.Role,
		Active: u.Active,
	}
}
