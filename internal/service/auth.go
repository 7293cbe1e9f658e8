package service

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"docvault/internal/auth"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// ErrInvalidCredentials covers both unknown email and wrong password so a
// login attempt cannot distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginResult is returned to a successfully authenticated caller.
type LoginResult struct {
	AccessToken string         `json:"access_token"`
	UserID      string         `json:"user_id"`
	Role        model.RoleName `json:"role"`
}

// AuthService defines registration and credential-based login.
type AuthService interface {
	// Register creates an account; the role defaults to viewer.
	Register(ctx context.Context, in CreateUserInput) (*model.User, error)

	// Login verifies the password and issues a signed access token.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type authService struct {
	users  UserService
	lookup repository.UserRepository
	tokens *auth.TokenManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users UserService, lookup repository.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, lookup: lookup, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, in CreateUserInput) (*model.User, error) {
	return s.users.Create(ctx, in)
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.lookup.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(u.ID, u.Role.Name)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken: token,
		UserID:      u.ID,
		Role:        u.Role.Name,
	}, nil
}
