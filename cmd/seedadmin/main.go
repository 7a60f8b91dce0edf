// Command seedadmin bootstraps the first superadmin account so a fresh
// installation can be logged into. Safe to re-run: an existing user with
// the same email is left untouched.
// Usage: go run ./cmd/seedadmin -email admin@taklaget.no -name "Admin" [-password secret]
// The password can also be supplied via TAKLAGET_SEED_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/repository/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	email := flag.String("email", "", "superadmin email (required)")
	name := flag.String("name", "Superadmin", "full name")
	password := flag.String("password", "", "initial password (or TAKLAGET_SEED_PASSWORD)")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		return errors.New("-email is required")
	}

	pw := *password
	if pw == "" {
		pw = os.Getenv("TAKLAGET_SEED_PASSWORD")
	}
	if len(pw) < 8 {
		return errors.New("password must be at least 8 characters (use -password or TAKLAGET_SEED_PASSWORD)")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := postgres.NewUserRepo(db)

	if existing, err := users.GetByEmail(ctx, *email); err == nil {
		log.Printf("user %s already exists (id %s), nothing to do", existing.Email, existing.ID)
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("look up existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pw), 12)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &domain.User{
		Email:           *email,
		PasswordHash:    string(hash),
		FullName:        *name,
		PermissionLevel: domain.LevelSuperadmin,
		IsActive:        true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create superadmin: %w", err)
	}

	log.Printf("superadmin %s created (id %s)", admin.Email, admin.ID)
	return nil
}
