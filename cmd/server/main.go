package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ptnguyen/coffeecorner-backend/config"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/controller"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/checkout"
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
	"github.com/ptnguyen/coffeecorner-backend/internal/router"
	"github.com/ptnguyen/coffeecorner-backend/internal/scheduler"
	"github.com/ptnguyen/coffeecorner-backend/internal/storage"
	"github.com/ptnguyen/coffeecorner-backend/internal/websocket"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"github.com/ptnguyen/coffeecorner-backend/pkg/redis"
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

	logger.Info("Starting COFFEE CORNER Backend Server", map[string]interface{}{
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

	// Redis is optional: without it checkout staging falls back to
	// memory and logout stops blacklisting tokens.
	var staging checkout.Store
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, running in degraded mode", map[string]interface{}{
			"error": err.Error(),
		})
		staging = checkout.NewMemoryStore(cfg.Checkout.StagingTTL)
	} else {
		defer redis.Close()
		staging = checkout.NewRedisStore(redis.GetClient(), cfg.Checkout.StagingTTL)
	}

	// File storage backend
	var store storage.Storage
	switch cfg.Upload.Backend {
	case "s3":
		store = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	default:
		local, err := storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.BaseURL)
		if err != nil {
			logger.Fatal("Failed to initialize local storage", err)
		}
		store = local
	}

	// WebSocket hub for inbox pushes
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	adminRepo := repository.NewAdminRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())
	favoriteRepo := repository.NewFavoriteRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())
	messageRepo := repository.NewMessageRepository(db.GetDB())
	stockRepo := repository.NewStockRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())
	snapshotRepo := repository.NewSnapshotRepository(db.GetDB())
	eventRepo := repository.NewEventRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		adminRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo, reviewRepo, favoriteRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(
		orderRepo,
		cartRepo,
		productRepo,
		staging,
		db.GetDB(),
		cfg.Checkout.DefaultStoreID,
	)
	reviewService := service.NewReviewService(reviewRepo, productRepo, orderRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, productRepo)
	addressService := service.NewAddressService(addressRepo)
	inboxService := service.NewInboxService(messageRepo, hub)
	stockService := service.NewStockService(stockRepo, storeRepo)
	userManagementService := service.NewUserManagementService(userRepo, adminRepo, db.GetDB())
	dashboardService := service.NewDashboardService(orderRepo, productRepo, snapshotRepo, db.GetDB())
	adminOrderService := service.NewAdminOrderService(orderRepo, userRepo, db.GetDB(), cfg.Checkout.DefaultStoreID)
	eventService := service.NewEventService(eventRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	reviewController := controller.NewReviewController(reviewService)
	favoriteController := controller.NewFavoriteController(favoriteService)
	addressController := controller.NewAddressController(addressService)
	inboxController := controller.NewInboxController(inboxService, hub)
	uploadController := controller.NewUploadController(store)
	dashboardController := controller.NewDashboardController(dashboardService)
	adminOrderController := controller.NewAdminOrderController(adminOrderService)
	stockController := controller.NewStockController(stockService)
	userManagementController := controller.NewUserManagementController(userManagementService)
	eventController := controller.NewEventController(eventService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Nightly sales snapshots for the dashboard
	snapshotScheduler := scheduler.NewSnapshotScheduler(dashboardService)
	if err := snapshotScheduler.Start(); err != nil {
		logger.Error("Failed to start snapshot scheduler", err)
	}
	defer snapshotScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		cartController,
		orderController,
		reviewController,
		favoriteController,
		addressController,
		inboxController,
		uploadController,
		dashboardController,
		adminOrderController,
		stockController,
		userManagementController,
		eventController,
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
