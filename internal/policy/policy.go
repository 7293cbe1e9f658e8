// Package policy is the single authorization checkpoint. Every gated
// action is an Action constant bound to a fixed required-role set; the
// gate combines that table with an optional ownership rule. It is pure:
// it never touches storage, callers pass in the resource owner id when
// the action needs one.
package policy

import (
	"errors"

	"docvault/internal/model"
)

// Action identifies an operation subject to the role table.
type Action int

const (
	DocumentCreate Action = iota
	DocumentRead
	DocumentUpdate
	DocumentDelete
	UserCreate
	UserRead
	UserUpdateRole
	UserDelete
)

var (
	ErrRoleMissing      = errors.New("user role is missing")
	ErrRoleNotPermitted = errors.New("role is not permitted for this action")
	ErrNotOwner         = errors.New("user does not own this resource")
)

// requiredRoles is the per-action policy. It is fixed at compile time and
// not configurable at runtime. An action absent from the table is
// role-agnostic: any authenticated identity may perform it.
var requiredRoles = map[Action][]model.RoleName{
	DocumentCreate: {model.RoleAdmin, model.RoleEditor},
	DocumentRead:   {model.RoleAdmin, model.RoleEditor, model.RoleViewer},
	DocumentUpdate: {model.RoleAdmin, model.RoleEditor},
	DocumentDelete: {model.RoleAdmin},
	UserCreate:     {model.RoleAdmin},
	UserRead:       {model.RoleAdmin, model.RoleEditor, model.RoleViewer},
	UserUpdateRole: {model.RoleAdmin, model.RoleEditor},
	UserDelete:     {model.RoleAdmin},
}

// RequiredRoles returns the roles allowed to perform the action.
// A nil result means the action only requires an authenticated identity.
func RequiredRoles(action Action) []model.RoleName {
	return requiredRoles[action]
}

// Decide checks the identity's role against the action's required-role
// set. It returns nil to allow, or one of ErrRoleMissing and
// ErrRoleNotPermitted to deny.
func Decide(identity *model.User, action Action) error {
	roles := requiredRoles[action]
	if len(roles) == 0 {
		return nil
	}
	if identity == nil || identity.Role.Name == "" {
		return ErrRoleMissing
	}
	if !identity.HasRole(roles...) {
		return ErrRoleNotPermitted
	}
	return nil
}

// DecideOwnership applies Decide plus the ownership overlay used by
// mutation actions: a non-admin must own the resource it touches.
// Admins bypass the ownership rule entirely.
func DecideOwnership(identity *model.User, action Action, resourceOwnerID string) error {
	if err := Decide(identity, action); err != nil {
		return err
	}
	if identity.Role.Name != model.RoleAdmin && identity.ID != resourceOwnerID {
		return ErrNotOwner
	}
	return nil
}
