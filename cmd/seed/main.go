package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-image-share/config"
	"github.com/oksasatya/go-image-share/internal/domain/entity"
	"github.com/oksasatya/go-image-share/internal/domain/repository"
	pginfra "github.com/oksasatya/go-image-share/internal/infrastructure/postgres"
	"github.com/oksasatya/go-image-share/pkg/helpers"
)

// seed inserts a demo account; running it twice leaves the first one in place.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Minute)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	email := "demo@example.com"
	password := "password123"
	username := "demoUser"

	hash, err := helpers.NewPasswordHasher(cfg.BcryptCost, 1).Hash(ctx, password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	u := &entity.User{
		Email:        email,
		Username:     &username,
		Name:         "Demo User",
		DateOfBirth:  time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		Bio:          "Seeded account",
		PasswordHash: hash,
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			fmt.Printf("user %s already exists; nothing to do\n", email)
			return
		}
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, u.Email, username, password)
}
