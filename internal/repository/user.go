package repository

import (
	"context"

	"docvault/internal/model"
)

// UserRepository defines data access for users. Lookups resolve the role
// relation and exclude soft-deleted rows; the rows themselves are kept so
// document ownership survives user deletion.
type UserRepository interface {
	// Create inserts a new user and returns the stored row.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns an active user by ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns an active user by email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns all active users with their roles.
	List(ctx context.Context) ([]model.User, error)

	// UpdateRole reassigns the user's role and bumps updated_at.
	UpdateRole(ctx context.Context, userID, roleID string) error

	// SoftDelete deactivates the user and stamps deleted_at.
	SoftDelete(ctx context.Context, id string) error
}

// RoleRepository reads the seeded role rows.
type RoleRepository interface {
	// FindByName returns the role with the given name.
	FindByName(ctx context.Context, name model.RoleName) (*model.Role, error)

	// List returns all roles.
	List(ctx context.Context) ([]model.Role, error)
}
