package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vistamar/listings-api/internal/config"
	"github.com/vistamar/listings-api/internal/database"
	"github.com/vistamar/listings-api/internal/handlers"
	"github.com/vistamar/listings-api/internal/logger"
	"github.com/vistamar/listings-api/internal/marketing"
	"github.com/vistamar/listings-api/internal/middleware"
	"github.com/vistamar/listings-api/internal/providers"
	"github.com/vistamar/listings-api/internal/providers/primary"
	"github.com/vistamar/listings-api/internal/providers/secondary"
	"github.com/vistamar/listings-api/internal/repository"
	"github.com/vistamar/listings-api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting listings API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool (favorites store)
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	// Construct the provider clients once; the aggregator owns them for
	// the process lifetime.
	primaryClient := primary.New(primary.Config{
		BaseURL:     cfg.Primary.BaseURL,
		APIKey:      cfg.Primary.APIKey,
		Timeout:     cfg.Primary.Timeout,
		MaxAttempts: cfg.Primary.MaxAttempts,
	}, log)

	var secondaryClient providers.ListingProvider
	if cfg.Secondary.Enabled {
		secondaryClient = secondary.New(secondary.Config{
			BaseURL:     cfg.Secondary.BaseURL,
			Token:       cfg.Secondary.APIKey,
			Timeout:     cfg.Secondary.Timeout,
			MaxAttempts: cfg.Secondary.MaxAttempts,
		}, log)
		log.Info("Secondary listing provider enabled", map[string]interface{}{
			"base_url": cfg.Secondary.BaseURL,
		})
	}

	var marketingClient services.MarketingClient
	if cfg.Marketing.Enabled {
		marketingClient = marketing.New(marketing.Config{
			BaseURL:     cfg.Marketing.BaseURL,
			Username:    cfg.Marketing.Username,
			Password:    cfg.Marketing.Password,
			Timeout:     cfg.Marketing.Timeout,
			MaxAttempts: cfg.Marketing.MaxAttempts,
		}, log)
		log.Info("Marketing-automation client enabled", map[string]interface{}{
			"base_url": cfg.Marketing.BaseURL,
		})
	}

	aggregator := services.NewAggregator(primaryClient, secondaryClient, marketingClient, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(aggregator, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize repository and handlers
	favoritesRepo := repository.NewFavoritesRepository(db)
	propertyHandler := handlers.NewPropertyHandler(aggregator)
	leadHandler := handlers.NewLeadHandler(aggregator)
	favoritesHandler := handlers.NewFavoritesHandler(favoritesRepo)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		properties := v1.Group("/properties")
		{
			properties.GET("", propertyHandler.Search)
			properties.GET("/:id", propertyHandler.Details)
			properties.GET("/:id/photos", propertyHandler.Photos)
		}

		v1.POST("/leads", leadHandler.Create)

		favorites := v1.Group("/favorites")
		{
			favorites.GET("", favoritesHandler.List)
			favorites.POST("", favoritesHandler.Add)
			favorites.DELETE("/:propertyId", favoritesHandler.Remove)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
