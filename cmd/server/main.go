package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jshan/storefront-backend/config"
	"github.com/jshan/storefront-backend/internal/app/controller"
	"github.com/jshan/storefront-backend/internal/app/repository"
	"github.com/jshan/storefront-backend/internal/app/service"
	"github.com/jshan/storefront-backend/internal/db"
	"github.com/jshan/storefront-backend/internal/events"
	"github.com/jshan/storefront-backend/internal/middleware"
	"github.com/jshan/storefront-backend/internal/router"
	"github.com/jshan/storefront-backend/internal/scheduler"
	"github.com/jshan/storefront-backend/internal/storage"
	"github.com/jshan/storefront-backend/internal/ws"
	"github.com/jshan/storefront-backend/pkg/logger"
	appRedis "github.com/jshan/storefront-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Storefront Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Event plumbing: the in-process bus always feeds the order feed hub;
	// Redis pub/sub is added when configured so other processes can
	// subscribe too.
	bus := events.NewBus()
	sinks := []events.Publisher{bus}

	if cfg.Redis.Enabled {
		if err := appRedis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, continuing with in-process events only", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer appRedis.Close()
			sinks = append(sinks, events.NewRedisPublisher(appRedis.GetClient(), events.DefaultChannel))
		}
	}
	publisher := events.Multi(sinks...)

	hub := ws.NewHub()
	go hub.Run()

	feed, cancelFeed := bus.Subscribe()
	defer cancelFeed()
	go hub.Consume(feed)

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	stockRepo := repository.NewStockRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	wishlistRepo := repository.NewWishlistRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	productService := service.NewProductService(productRepo, stockRepo)
	cartService := service.NewCartService(cartRepo, stockRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, cartRepo, stockRepo, cartService, db.GetDB())
	orderService := service.NewOrderService(orderRepo, cartRepo, stockRepo, publisher, db.GetDB(), cfg.Checkout.Timeout)

	// Initialize controllers
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService, wishlistService)
	wishlistController := controller.NewWishlistController(wishlistService)
	orderController := controller.NewOrderController(orderService)
	orderFeedController := controller.NewOrderFeedController(hub, cfg.CORS.AllowedOrigins)

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Expire stale pending orders on a schedule
	expiryScheduler := scheduler.NewOrderExpiryScheduler(
		orderRepo,
		orderService,
		cfg.Checkout.PendingTTL,
		cfg.Checkout.ExpirySchedule,
	)
	if err := expiryScheduler.Start(); err != nil {
		logger.Fatal("Failed to start order expiry scheduler", err)
	}
	defer expiryScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		productController,
		cartController,
		wishlistController,
		orderController,
		orderFeedController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
