//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/nadia/mockdeck/internal/auth"
	"github.com/nadia/mockdeck/internal/database"
	"github.com/nadia/mockdeck/internal/database/models"
	"github.com/nadia/mockdeck/internal/mockups"
	"github.com/nadia/mockdeck/pkg/config"
	"github.com/nadia/mockdeck/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	name := os.Getenv("SEED_NAME")

	if email == "" {
		email = "demo@example.com"
	}
	if password == "" {
		password = "demo1234!"
	}
	if name == "" {
		name = "Demo User"
	}

	ctx := context.Background()
	resp, err := authService.Register(ctx, auth.RegisterInput{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		if err == auth.ErrUserExists {
			fmt.Printf("Demo user already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create demo user: %v", err)
	}

	// A sample mockup so the editor opens on something.
	svc := mockups.NewService(db, logger)
	m, err := svc.Create(ctx, resp.User.ID, mockups.CreateInput{
		Name:       "Welcome chat",
		Type:       models.MockupTypeChat,
		Platform:   "whatsapp",
		Data:       `{"messages":[{"from":"them","text":"Welcome to mockdeck!"}]}`,
		Appearance: `{"theme":"light"}`,
	})
	if err != nil {
		log.Fatalf("failed to create sample mockup: %v", err)
	}

	fmt.Printf("Demo user created successfully!\n")
	fmt.Printf("Email: %s\n", resp.User.Email)
	fmt.Printf("Sample mockup: %s\n", m.ID)
	fmt.Printf("Token: %s\n", resp.Token)
}
