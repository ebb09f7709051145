package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/pageza/whatscooking/backend/config"
	"github.com/pageza/whatscooking/backend/internal/database"
	"github.com/pageza/whatscooking/backend/internal/service"
)

// Removes anonymous recipes whose retention window has lapsed. Intended to
// run from cron.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recipeService := service.NewRecipeService(db, nil)
	deleted, err := recipeService.DeleteExpired(ctx)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	log.Printf("Deleted %d expired recipes", deleted)
}
