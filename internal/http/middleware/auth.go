package middleware

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/auth"
	"docvault/internal/model"
	"docvault/internal/policy"
	"docvault/internal/repository"
)

// IdentityLocalKey is the key under which the resolved user is stored in
// Fiber's context locals by Authenticate.
const IdentityLocalKey = "identity"

const bearerPrefix = "Bearer "

// IdentityFromCtx returns the user resolved by Authenticate, or nil when
// the request did not pass through it.
func IdentityFromCtx(c *fiber.Ctx) *model.User {
	if u, ok := c.Locals(IdentityLocalKey).(*model.User); ok {
		return u
	}
	return nil
}

// Authenticate is the identity resolver. It extracts the bearer token,
// verifies it and loads the referenced active user, storing it in the
// context locals for downstream handlers.
//
// Failure modes, all 401:
//   - MISSING_CREDENTIAL: no Authorization header or wrong prefix
//   - INVALID_CREDENTIAL: any token verification failure
//   - UNKNOWN_SUBJECT: token subject is not an active user
func Authenticate(tokens *auth.TokenManager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return denied(c, fiber.StatusUnauthorized, "MISSING_CREDENTIAL", "missing or malformed authorization header")
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			return denied(c, fiber.StatusUnauthorized, "INVALID_CREDENTIAL", "invalid or expired token")
		}

		user, err := users.FindByID(c.UserContext(), claims.Subject)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return denied(c, fiber.StatusUnauthorized, "UNKNOWN_SUBJECT", "user not found")
			}
			return fiber.ErrInternalServerError
		}

		c.Locals(IdentityLocalKey, user)
		return c.Next()
	}
}

// RequireRoles enforces the policy table for the given action against the
// identity resolved by Authenticate. Ownership checks need the resource
// loaded first and therefore live in the services, not here.
func RequireRoles(action policy.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := IdentityFromCtx(c)
		if err := policy.Decide(identity, action); err != nil {
			switch {
			case errors.Is(err, policy.ErrRoleMissing):
				return denied(c, fiber.StatusForbidden, "ROLE_MISSING", "user role is missing")
			default:
				return denied(c, fiber.StatusForbidden, "ROLE_NOT_PERMITTED", "you do not have permission to access this resource")
			}
		}
		return c.Next()
	}
}

// denied writes the standard error envelope without going through the
// global error handler, so the specific authentication code is preserved.
func denied(c *fiber.Ctx, status int, code, message string) error {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	return c.Status(status).JSON(fiber.Map{
		"request_id": rid,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}
