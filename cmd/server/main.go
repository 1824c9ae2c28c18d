package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rknair/cloudpuff-backend/config"
	"github.com/rknair/cloudpuff-backend/internal/app/controller"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	"github.com/rknair/cloudpuff-backend/internal/db"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
	"github.com/rknair/cloudpuff-backend/internal/realtime"
	"github.com/rknair/cloudpuff-backend/internal/router"
	"github.com/rknair/cloudpuff-backend/internal/scheduler"
	"github.com/rknair/cloudpuff-backend/internal/storage"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"github.com/rknair/cloudpuff-backend/pkg/pos/clover"
	"github.com/rknair/cloudpuff-backend/pkg/redis"
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

	logger.Info("Starting CloudPuff Backend Server", map[string]interface{}{
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

	// Redis is only needed for logout token revocation; the server
	// keeps running without it.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redis.Close()

	// External services
	imageStorage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	pos := clover.NewClient(clover.Config{
		MerchantID:        cfg.Clover.MerchantID,
		APIToken:          cfg.Clover.APIToken,
		BaseURL:           cfg.Clover.BaseURL,
		CheckoutBaseURL:   cfg.Clover.CheckoutBaseURL,
		ChargeURL:         cfg.Clover.ChargeURL,
		ChargeFallbackURL: cfg.Clover.ChargeFallback,
	})

	// Realtime hub
	hub := realtime.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	waitlistRepo := repository.NewWaitlistRepository(db.GetDB())
	notificationRepo := repository.NewNotificationRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	productService := service.NewProductService(
		productRepo,
		cartRepo,
		waitlistRepo,
		notificationRepo,
		hub,
		pos,
		imageStorage,
		cfg.Clover.PushEnabled,
	)
	categoryService := service.NewCategoryService(categoryRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, cartRepo, userRepo, pos)
	notificationService := service.NewNotificationService(notificationRepo, waitlistRepo, productRepo)
	syncService := service.NewSyncService(productRepo, categoryRepo, pos)
	sheetService := service.NewSheetService(productRepo, categoryRepo, categoryService)

	// Initialize controllers
	authController := controller.NewAuthController(authService, cfg)
	productController := controller.NewProductController(productService, imageStorage)
	categoryController := controller.NewCategoryController(categoryService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	notificationController := controller.NewNotificationController(notificationService)
	cloverController := controller.NewCloverController(syncService, pos)
	uploadController := controller.NewUploadController(imageStorage)
	sheetController := controller.NewSheetController(sheetService)
	wsController := controller.NewWSController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		categoryController,
		cartController,
		orderController,
		notificationController,
		cloverController,
		uploadController,
		sheetController,
		wsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Periodic POS catalog sync (no-op without a cron expression)
	syncScheduler := scheduler.NewSyncScheduler(syncService, cfg.Sync.Cron)
	if err := syncScheduler.Start(); err != nil {
		logger.Warn("Catalog sync scheduler failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer syncScheduler.Stop()

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
