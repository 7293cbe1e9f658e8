package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docvault/internal/service"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser registers a user with an explicit role. Only admins reach
// this handler; self-service registration goes through /auth/register.
func CreateUser(userSvc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createUserRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		u, err := userSvc.Create(c.UserContext(), service.CreateUserInput{
			Email:    req.Email,
			Password: req.Password,
			Role:     req.Role,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// ListUsers returns all active users.
func ListUsers(userSvc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := userSvc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": users})
	}
}

// GetUser returns a single active user by ID.
func GetUser(userSvc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := userSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

type updateUserRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// UpdateUserRole reassigns a user to a different role by name.
func UpdateUserRole(userSvc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateUserRoleRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if _, err := uuid.Parse(req.UserID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid user_id format")
		}

		u, err := userSvc.UpdateRole(c.UserContext(), service.UpdateUserRoleInput{
			UserID: req.UserID,
			Role:   req.Role,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// DeleteUser soft-deletes a user. Documents they uploaded keep their
// ownership reference.
func DeleteUser(userSvc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := userSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
