package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `
	u.id, u.email, u.password_hash, u.is_active, u.created_at, u.updated_at,
	r.id, r.name`

const userJoins = `
	FROM users u
	JOIN roles r ON r.id = u.role_id`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.Role.ID,
		&u.Role.Name,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record with its role.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, password_hash, role_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, email, password_hash, is_active, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Role.ID,
		u.IsActive,
		u.CreatedAt,
		u.UpdatedAt,
	)
	out := *u
	if err := row.Scan(
		&out.ID,
		&out.Email,
		&out.PasswordHash,
		&out.IsActive,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches an active, non-deleted user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT` + userColumns + userJoins + ` WHERE u.id = $1 AND u.deleted_at IS NULL AND u.is_active`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches an active, non-deleted user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT` + userColumns + userJoins + ` WHERE u.email = $1 AND u.deleted_at IS NULL AND u.is_active`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// List returns all active users ordered by creation time.
func (r *UserPostgres) List(ctx context.Context) ([]model.User, error) {
	q := `SELECT` + userColumns + userJoins + ` WHERE u.deleted_at IS NULL AND u.is_active ORDER BY u.created_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole reassigns the user's role.
func (r *UserPostgres) UpdateRole(ctx context.Context, userID, roleID string) error {
	const q = `UPDATE users SET role_id = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, userID, roleID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete deactivates the user but keeps the row, so documents it
// uploaded retain their ownership reference.
func (r *UserPostgres) SoftDelete(ctx context.Context, id string) error {
	const q = `UPDATE users SET is_active = FALSE, deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RolePostgres is a PostgreSQL implementation of repository.RoleRepository.
type RolePostgres struct {
	db *sql.DB
}

// NewRolePostgres creates a new RolePostgres repository.
func NewRolePostgres(db *sql.DB) *RolePostgres {
	return &RolePostgres{db: db}
}

var _ repository.RoleRepository = (*RolePostgres)(nil)

// FindByName returns the seeded role with the given name.
func (r *RolePostgres) FindByName(ctx context.Context, name model.RoleName) (*model.Role, error) {
	const q = `SELECT id, name FROM roles WHERE name = $1`
	var role model.Role
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, err
	}
	return &role, nil
}

// List returns all roles.
func (r *RolePostgres) List(ctx context.Context) ([]model.Role, error) {
	const q = `SELECT id, name FROM roles ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]model.Role, 0)
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}
