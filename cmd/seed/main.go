package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/crypto/bcrypt"

	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/database/migration"
	"docvault/internal/model"
	"docvault/internal/repository/postgres"
)

type seedAccount struct {
	email    string
	password string
	role     model.RoleName
}

var accounts = []seedAccount{
	{email: "admin@docvault.local", password: "admin123", role: model.RoleAdmin},
	{email: "editor@docvault.local", password: "editor123", role: model.RoleEditor},
	{email: "viewer@docvault.local", password: "viewer123", role: model.RoleViewer},
}

// Seeds the database with one account per role plus a pending document
// for each non-viewer account. Safe to run repeatedly: existing accounts
// are left untouched.
func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.Local, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	userRepo := postgres.NewUserPostgres(db)
	roleRepo := postgres.NewRolePostgres(db)
	docRepo := postgres.NewDocumentPostgres(db)

	for _, acc := range accounts {
		u, err := seedUser(ctx, userRepo, roleRepo, acc)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", acc.email, err)
		}
		if u == nil {
			log.Printf("user %s already exists, skipping", acc.email)
			continue
		}
		log.Printf("created %s user %s", acc.role, acc.email)

		if acc.role == model.RoleViewer {
			continue
		}
		doc, err := seedDocument(ctx, docRepo, u)
		if err != nil {
			log.Fatalf("failed to seed document for %s: %v", acc.email, err)
		}
		log.Printf("created pending document %q for %s", doc.Title, acc.email)
	}
}

// seedUser creates the account unless it already exists, in which case it
// returns (nil, nil).
func seedUser(ctx context.Context, users *postgres.UserPostgres, roles *postgres.RolePostgres, acc seedAccount) (*model.User, error) {
	if _, err := users.FindByEmail(ctx, acc.email); err == nil {
		return nil, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	role, err := roles.FindByName(ctx, acc.role)
	if err != nil {
		return nil, fmt.Errorf("look up role %s: %w", acc.role, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Email:        acc.email,
		PasswordHash: string(hash),
		Role:         *role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func seedDocument(ctx context.Context, docs *postgres.DocumentPostgres, owner *model.User) (*model.Document, error) {
	id := uuid.New().String()
	return docs.Create(ctx, &model.Document{
		ID:         id,
		Title:      fmt.Sprintf("Welcome document for %s", owner.Email),
		Content:    "Seeded sample document.",
		FileURL:    "documents/seed-" + id + ".txt",
		Status:     model.StatusPending,
		UploadedBy: *owner,
		CreatedAt:  time.Now().UTC(),
	})
}
