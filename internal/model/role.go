package model

import "fmt"

// RoleName is the closed set of permission tiers. Role checks match on
// this type rather than raw strings so an unknown name is rejected at the
// boundary instead of silently failing a comparison deeper in.
type RoleName string

const (
	RoleAdmin  RoleName = "admin"
	RoleEditor RoleName = "editor"
	RoleViewer RoleName = "viewer"
)

// RoleNames lists every valid role, in seeding order.
func RoleNames() []RoleName {
	return []RoleName{RoleAdmin, RoleEditor, RoleViewer}
}

// ParseRoleName validates a raw role string coming from a request body or
// a token claim.
func ParseRoleName(s string) (RoleName, error) {
	switch RoleName(s) {
	case RoleAdmin, RoleEditor, RoleViewer:
		return RoleName(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Role is a named permission tier. Rows are seeded once by the migration
// and never mutated afterwards.
type Role struct {
	ID   string   `json:"id"`
	Name RoleName `json:"name"`
}
