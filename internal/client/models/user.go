// Package models contains the data types shared by the InfyAir client:
// the authenticated user and role, the credential persisted between runs,
// and the product/geography records served by the backend API.
package models

import "encoding/json"

// Role is the authorization tier assigned to a user. Route gating treats
// admin as a superset of viewer: an admin passes every role gate.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// Satisfies reports whether a user holding role r may access a route that
// requires role required. Admin satisfies every requirement.
func (r Role) Satisfies(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// User is the profile attached to an authenticated session.
type User struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// StoredCredential is the pair persisted by the credentials repository:
// the raw token string and the serialized user profile. It is written on
// login, overwritten on re-login, and deleted on logout or expiration.
type StoredCredential struct {
	Token string
	User  User
}

// MarshalUser serializes the user profile for the "user" storage slot.
func (c *StoredCredential) MarshalUser() ([]byte, error) {
	return json.Marshal(c.User)
}
