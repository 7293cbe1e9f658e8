package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"docvault/internal/model"
	"docvault/internal/repository"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrInvalidRole      = errors.New("invalid role")
	ErrSameRole         = errors.New("user already has this role")
)

// CreateUserInput carries registration data. Role is a role name and
// defaults to viewer when empty.
type CreateUserInput struct {
	Email    string
	Password string
	Role     string
}

// UpdateUserRoleInput reassigns a user to a different role by name.
type UpdateUserRoleInput struct {
	UserID string
	Role   string
}

// UserService defines the use cases for managing users and their roles.
type UserService interface {
	// Create registers a user with a bcrypt-hashed password. Duplicate
	// email fails with ErrEmailTaken, an unknown role with ErrInvalidRole.
	Create(ctx context.Context, in CreateUserInput) (*model.User, error)

	// List returns all active users with their roles.
	List(ctx context.Context) ([]model.User, error)

	// Get returns a single active user by ID.
	Get(ctx context.Context, id string) (*model.User, error)

	// UpdateRole moves the user to the named role. Reassigning the role
	// the user already holds fails with ErrSameRole and changes nothing.
	UpdateRole(ctx context.Context, in UpdateUserRoleInput) (*model.User, error)

	// Delete soft-deletes the user; documents it uploaded keep their
	// ownership reference.
	Delete(ctx context.Context, id string) error
}

type userService struct {
	users repository.UserRepository
	roles repository.RoleRepository
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository, roles repository.RoleRepository) UserService {
	return &userService{users: users, roles: roles}
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if in.Email == "" {
		return nil, ErrEmailRequired
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	roleName := model.RoleViewer
	if in.Role != "" {
		parsed, err := model.ParseRoleName(in.Role)
		if err != nil {
			return nil, ErrInvalidRole
		}
		roleName = parsed
	}
	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRole
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &model.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         *role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.users.Create(ctx, u)
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) UpdateRole(ctx context.Context, in UpdateUserRoleInput) (*model.User, error) {
	u, err := s.Get(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	roleName, err := model.ParseRoleName(in.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}
	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRole
		}
		return nil, err
	}

	if u.Role.ID == role.ID {
		return nil, ErrSameRole
	}

	if err := s.users.UpdateRole(ctx, u.ID, role.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Role = *role
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.SoftDelete(ctx, u.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
