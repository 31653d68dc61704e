package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"merchandising-service/internal/clients"
	"merchandising-service/internal/config"
	"merchandising-service/internal/events"
	"merchandising-service/internal/handlers"
	"merchandising-service/internal/middleware"
	"merchandising-service/internal/repository"
	"merchandising-service/internal/subscribers"
)

// @title Merchandising Display-Order API
// @version 1.0.0
// @description Display-order management for storefront categories and products with multi-tenant support

// @contact.name Merchandising API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8086
// @BasePath /api/v1

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis client
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
		redisClient = nil
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Structured logger shared by events and handlers
	appLogger := logrus.New()
	appLogger.SetFormatter(&logrus.JSONFormatter{})
	appLogger.SetLevel(logrus.InfoLevel)

	// Initialize NATS events publisher
	eventsPublisher, err := events.NewPublisher(appLogger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
		eventsPublisher = nil
	} else {
		log.Println("✓ NATS events publisher initialized")
	}

	// Initialize repository with Redis for caching
	orderRepo := repository.NewOrderRepository(db, redisClient)

	// Initialize catalog client
	catalogClient := clients.NewCatalogClient()

	// Initialize handlers
	layoutHandler := handlers.NewLayoutHandler(catalogClient, orderRepo, eventsPublisher, appLogger)

	// Initialize and start catalog subscriber for NATS events
	natsURL := os.Getenv("NATS_URL")
	var catalogSubscriber *subscribers.CatalogSubscriber
	if natsURL != "" {
		catalogSubscriber, err = subscribers.NewCatalogSubscriber(orderRepo, appLogger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize catalog subscriber: %v (continuing without pruning events)", err)
		} else if err := catalogSubscriber.Start(); err != nil {
			log.Printf("WARNING: Catalog subscriber error: %v", err)
		} else {
			log.Println("✓ Catalog subscriber initialized (listening for catalog deletion events)")
		}
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no tenant context required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)

	// Tenant-scoped API routes
	api := router.Group("/api/v1")
	api.Use(middleware.TenantMiddleware())
	{
		merchandising := api.Group("/merchandising")
		{
			merchandising.GET("/layout", layoutHandler.GetLayout)
			merchandising.POST("/layout/moves", layoutHandler.ApplyMove)
			merchandising.POST("/order", layoutHandler.SaveOrder)
			merchandising.PUT("/order/categories/:id", layoutHandler.SaveCategoryOrder)
			merchandising.DELETE("/order", layoutHandler.ResetOrder)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Merchandising service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down merchandising-service...")

	// Stop catalog subscriber
	if catalogSubscriber != nil {
		catalogSubscriber.Stop()
		log.Println("✓ Catalog subscriber stopped")
	}

	// Close events publisher
	if eventsPublisher != nil {
		eventsPublisher.Close()
		log.Println("✓ Events publisher closed")
	}

	log.Println("Merchandising service stopped")
}
