// seed-admin creates an ADMIN member, or promotes an existing member to
// ADMIN.  Admins may create workbook types.
//
// Usage:
//
//	ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./cmd/seed-admin
//	go run ./cmd/seed-admin -email ops@example.com -password secret1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/visitor-register/internal/config"
	"github.com/iliyamo/visitor-register/internal/database"
	"github.com/iliyamo/visitor-register/internal/model"
	"github.com/iliyamo/visitor-register/internal/repository"
	"github.com/iliyamo/visitor-register/internal/utils"
)

func main() {
	_ = godotenv.Load()
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (only used when creating)")
	name := flag.String("name", envOr("ADMIN_NAME", "Administrator"), "display name")
	flag.Parse()
	if *email == "" {
		fmt.Fprintln(os.Stderr, "email is required (-email or ADMIN_EMAIL)")
		os.Exit(2)
	}

	cfg := config.Load()
	db, err := database.Open(database.Options{
		Driver: cfg.DBDriver, User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName, Path: cfg.DBPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	if _, err := database.Migrate(db, cfg.DBDriver); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	members := repository.NewMemberRepo(db)

	existing, err := members.GetByEmail(ctx, *email)
	switch {
	case err == nil:
		if err := members.SetRole(ctx, existing.ID, model.RoleAdmin); err != nil {
			fmt.Fprintf(os.Stderr, "promote: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("promoted member %d (%s) to ADMIN\n", existing.ID, existing.Email)
	case errors.Is(err, repository.ErrMemberNotFound):
		hash, err := utils.HashPassword(*password, cfg.BcryptCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
			os.Exit(1)
		}
		m := model.Member{Email: *email, PasswordHash: hash, Name: *name, Role: model.RoleAdmin}
		if err := members.Create(ctx, &m); err != nil {
			fmt.Fprintf(os.Stderr, "create admin: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created ADMIN member %d (%s)\n", m.ID, m.Email)
	default:
		fmt.Fprintf(os.Stderr, "lookup member: %v\n", err)
		os.Exit(1)
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
