package core

import (
	"strings"
	"time"
)

// Role is the closed set of roles a principal may hold.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTeamLead Role = "teamLead"
	RoleEmployee Role = "employee"
)

// ParseRole returns the role named by s. An empty string yields the default employee role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(s)) {
	case "":
		return RoleEmployee, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTeamLead:
		return RoleTeamLead, nil
	case RoleEmployee:
		return RoleEmployee, nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeamLead || r == RoleEmployee
}

// Status is the lifecycle state of a principal.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus returns the status named by s.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Principal is an identity bound to a wallet address
type Principal struct {
	ID         string    // Immutable identifier assigned at creation
	Address    string    // Canonical (lower-cased) wallet address, unique
	Username   string    // Display label, not unique
	Role       Role      // Authorization role
	Status     Status    // Inactive principals cannot authenticate
	SecretHash string    // Only populated when explicitly requested from the store
	CreatedAt  time.Time // When the principal was registered
	UpdatedAt  time.Time // When the principal was last modified
}

// IsActive reports whether the principal may authenticate.
func (p Principal) IsActive() bool {
	return p.Status == StatusActive
}

// PrincipalUpdate carries a partial update. Nil fields are left unchanged.
type PrincipalUpdate struct {
	Username *string
	Role     *Role
	Status   *Status
}

// Empty reports whether the update changes nothing.
func (u PrincipalUpdate) Empty() bool {
	return u.Username == nil && u.Role == nil && u.Status == nil
}

// CanonicalAddress normalizes a wallet address for storage and lookup. Address comparison is
// case-insensitive everywhere.
func CanonicalAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
