package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/auth"
	"docvault/internal/http/middleware"
	"docvault/internal/policy"
	"docvault/internal/repository"
	"docvault/internal/service"
)

// Dependencies bundles everything route registration needs.
type Dependencies struct {
	DB      *sql.DB
	Tokens  *auth.TokenManager
	Users   repository.UserRepository
	AuthSvc service.AuthService
	UserSvc service.UserService
	DocSvc  service.DocumentService
}

// RegisterRoutes wires all HTTP endpoints. Everything under /documents
// and /users requires a valid token plus the role the action demands;
// ownership rules are applied inside the services.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", LivenessProbe())

	authGroup := app.Group("/auth")
	authGroup.Post("/register", Register(deps.AuthSvc))
	authGroup.Post("/login", Login(deps.AuthSvc))
	authGroup.Post("/logout", Logout())

	authenticated := middleware.Authenticate(deps.Tokens, deps.Users)

	docs := app.Group("/documents", authenticated)
	docs.Post("/", middleware.RequireRoles(policy.DocumentCreate), UploadDocument(deps.DocSvc))
	docs.Get("/", middleware.RequireRoles(policy.DocumentRead), ListDocuments(deps.DocSvc))
	docs.Get("/:id", middleware.RequireRoles(policy.DocumentRead), GetDocument(deps.DocSvc))
	docs.Get("/:id/download", middleware.RequireRoles(policy.DocumentRead), DownloadDocument(deps.DocSvc))
	docs.Put("/:id", middleware.RequireRoles(policy.DocumentUpdate), UpdateDocument(deps.DocSvc))
	docs.Delete("/:id", middleware.RequireRoles(policy.DocumentDelete), DeleteDocument(deps.DocSvc))

	users := app.Group("/users", authenticated)
	users.Post("/", middleware.RequireRoles(policy.UserCreate), CreateUser(deps.UserSvc))
	users.Get("/", middleware.RequireRoles(policy.UserRead), ListUsers(deps.UserSvc))
	// Registered before /users/:id so "role" is not captured as an id.
	users.Put("/role", middleware.RequireRoles(policy.UserUpdateRole), UpdateUserRole(deps.UserSvc))
	users.Get("/:id", middleware.RequireRoles(policy.UserRead), GetUser(deps.UserSvc))
	users.Delete("/:id", middleware.RequireRoles(policy.UserDelete), DeleteUser(deps.UserSvc))
}
