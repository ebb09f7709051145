package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pageza/whatscooking/backend/config"
	"github.com/pageza/whatscooking/backend/internal/api"
	"github.com/pageza/whatscooking/backend/internal/database"
	"github.com/pageza/whatscooking/backend/internal/router"
	"github.com/pageza/whatscooking/backend/internal/server"
	"github.com/pageza/whatscooking/backend/internal/service"
)

func main() {
	// .env is optional; real deployments configure through the environment.
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
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient, err := database.NewRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	emailService := service.NewEmailService(cfg)
	llmClient := service.NewLLMService(cfg)
	signupStore := service.NewRedisSignupStore(redisClient)
	authService := service.NewAuthService(db, signupStore, emailService, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db, llmClient)

	authHandler := api.NewAuthHandler(authService)
	recipeHandler := api.NewRecipeHandler(recipeService, authService)

	origins := []string{cfg.FrontendURL, "http://localhost:3000"}
	r := router.SetupRouter(authHandler, recipeHandler, redisClient, origins)

	srv := server.New(r, fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
