package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-jwt-identity/config"
	"github.com/oksasatya/go-jwt-identity/internal/domain/entity"
	repo "github.com/oksasatya/go-jwt-identity/internal/domain/repository"
	pginfra "github.com/oksasatya/go-jwt-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	store := pginfra.NewCredentialStore(pool, helpers.DefaultPasswordPolicy)

	// Ensure base roles exist
	for _, role := range entity.SeedRoles {
		if err := store.CreateRole(ctx, role); err != nil {
			var ierrs entity.IdentityErrors
			if !errors.As(err, &ierrs) {
				log.Fatalf("failed to create role %s: %v", role, err)
			}
		}
	}
	fmt.Printf("roles ensured: %v\n", entity.SeedRoles)

	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		fmt.Println("SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set; skipping admin account")
		return
	}

	admin, err := store.FindByEmail(ctx, cfg.SeedAdminEmail)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		admin = &entity.User{UserName: cfg.SeedAdminUserName, Email: cfg.SeedAdminEmail, FirstName: "Admin", LastName: "Account"}
		if err := store.CreateUser(ctx, admin, cfg.SeedAdminPassword); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		fmt.Printf("seeded admin: id=%s email=%s username=%s\n", admin.ID, admin.Email, admin.UserName)
	case err != nil:
		log.Fatalf("failed to look up admin: %v", err)
	default:
		fmt.Printf("admin exists: id=%s email=%s\n", admin.ID, admin.Email)
	}

	for _, role := range []string{entity.RoleUser, entity.RoleAdmin} {
		if err := store.AddToRole(ctx, admin, role); err != nil {
			var ierrs entity.IdentityErrors
			if !errors.As(err, &ierrs) {
				log.Fatalf("failed to assign %s: %v", role, err)
			}
		}
	}
	fmt.Println("assigned User and Admin roles to admin (if not already)")
}
