package middleware

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/internal/policy"
	repoMocks "docvault/internal/repository/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		// Check if it's readable in handler (from response body)
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	loc := time.UTC

	// Logger usually depends on RequestID for request_id field
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, loc))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	// Verify log output
	var logData map[string]any
	err := json.Unmarshal(buf.Bytes(), &logData)
	assert.NoError(t, err)

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
}

func newTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager(config.JWTConfig{Secret: "test-secret", TTLMin: 5})
	require.NoError(t, err)
	return tm
}

type errorCode struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func TestAuthenticate(t *testing.T) {
	tokens := newTokenManager(t)
	users := new(repoMocks.MockUserRepository)

	app := fiber.New()
	app.Get("/protected", Authenticate(tokens, users), func(c *fiber.Ctx) error {
		identity := IdentityFromCtx(c)
		return c.SendString(identity.Email)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorCode
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "MISSING_CREDENTIAL", res.Error.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Basic abc")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorCode
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "MISSING_CREDENTIAL", res.Error.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorCode
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_CREDENTIAL", res.Error.Code)
	})

	t.Run("unknown subject", func(t *testing.T) {
		userID := uuid.New().String()
		token, err := tokens.Sign(userID, model.RoleViewer)
		require.NoError(t, err)

		users.On("FindByID", mock.Anything, userID).Return(nil, sql.ErrNoRows).Once()

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorCode
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNKNOWN_SUBJECT", res.Error.Code)
		users.AssertExpectations(t)
	})

	t.Run("lookup failure", func(t *testing.T) {
		userID := uuid.New().String()
		token, err := tokens.Sign(userID, model.RoleViewer)
		require.NoError(t, err)

		users.On("FindByID", mock.Anything, userID).Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		users.AssertExpectations(t)
	})

	t.Run("resolved identity reaches handler", func(t *testing.T) {
		user := &model.User{
			ID:    uuid.New().String(),
			Email: "viewer@example.com",
			Role:  model.Role{Name: model.RoleViewer},
		}
		token, err := tokens.Sign(user.ID, user.Role.Name)
		require.NoError(t, err)

		users.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, "viewer@example.com", buf.String())
		users.AssertExpectations(t)
	})
}

func TestRequireRoles(t *testing.T) {
	withRole := func(name model.RoleName) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals(IdentityLocalKey, &model.User{
				ID:   uuid.New().String(),
				Role: model.Role{Name: name},
			})
			return c.Next()
		}
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("permitted role passes", func(t *testing.T) {
		app := fiber.New()
		app.Post("/documents", withRole(model.RoleEditor), RequireRoles(policy.DocumentCreate), ok)

		req := httptest.NewRequest("POST", "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("viewer cannot create documents", func(t *testing.T) {
		app := fiber.New()
		app.Post("/documents", withRole(model.RoleViewer), RequireRoles(policy.DocumentCreate), ok)

		req := httptest.NewRequest("POST", "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var res errorCode
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "ROLE_NOT_PERMITTED", res.Error.Code)
	})

	t.Run("editor cannot manage users", func(t *testing.T) {
		app := fiber.New()
		app.Get("/users", withRole(model.RoleEditor), RequireRoles(policy.UserRead), ok)

		req := httptest.NewRequest("GET", "/users", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("missing identity", func(t *testing.T) {
		app := fiber.New()
		app.Get("/documents", RequireRoles(policy.DocumentRead), ok)

		req := httptest.NewRequest("GET", "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var res errorCode
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "ROLE_MISSING", res.Error.Code)
	})
}
