package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/teaminsight/reflection/api"
	"github.com/teaminsight/reflection/config"
	"github.com/teaminsight/reflection/genai"
	"github.com/teaminsight/reflection/policy"
	"github.com/teaminsight/reflection/service"
	"github.com/teaminsight/reflection/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment")
	}

	// Load configuration
	cfg := config.Load()

	log.Printf("Starting reflection service...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("GenAI model: %s", cfg.GenAIModel)

	if cfg.TeamSessionSecret == "" {
		log.Fatalf("Missing TEAM_SESSION_SECRET")
	}

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize generative backend gateway
	client := genai.NewClient(cfg.GenAIURL, cfg.GenAIAPIKey, cfg.GenAIModel, cfg.GenAITimeout)
	gateway := genai.NewGateway(client)

	// Initialize policy resolver and seed defaults
	resolver := policy.NewResolver(db)
	ctx := context.Background()
	if err := resolver.EnsureDefaults(ctx); err != nil {
		log.Fatalf("Failed to seed reflection policy defaults: %v", err)
	}

	// Initialize service
	svc := service.New(db, gateway, resolver, cfg.MaxTurns)

	// Initialize handler
	h := api.NewHandler(svc, cfg.TeamSessionSecret)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(e)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Reflection API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down reflection service...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Reflection service stopped")
}
