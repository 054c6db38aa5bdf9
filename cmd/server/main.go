package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/controller"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/internal/app/service"
	"github.com/dkushnir/lavka-backend/internal/db"
	"github.com/dkushnir/lavka-backend/internal/middleware"
	"github.com/dkushnir/lavka-backend/internal/router"
	"github.com/dkushnir/lavka-backend/internal/scheduler"
	"github.com/dkushnir/lavka-backend/internal/storage"
	"github.com/dkushnir/lavka-backend/pkg/logger"
	"github.com/dkushnir/lavka-backend/pkg/redis"
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

	logger.Info("Starting Lavka Backend Server", map[string]interface{}{
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

	// Token blacklist is optional; logout still works without it
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Failed to connect to Redis, token blacklist disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
		}
	}

	// Initialize storage
	store, err := newStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	settingRepo := repository.NewSettingRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, &cfg.JWT)
	categoryService := service.NewCategoryService(categoryRepo, store)
	productService := service.NewProductService(productRepo, categoryRepo, store)
	cartService := service.NewCartService(cartRepo, productRepo)
	storefrontService := service.NewStorefrontService(settingRepo, categoryRepo, productRepo)

	// Initialize controllers
	storefrontController := controller.NewStorefrontController(storefrontService, productService)
	authController := controller.NewAuthController(authService, cfg.JWT.Secret)
	cartController := controller.NewCartController(cartService)
	categoryController := controller.NewCategoryController(categoryService, store, &cfg.Storage)
	productController := controller.NewProductController(productService, store, &cfg.Storage)
	uploadController := controller.NewUploadController(categoryService, store, &cfg.Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		storefrontController,
		authController,
		cartController,
		categoryController,
		productController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start the orphaned upload sweeper
	if cfg.Sweeper.Enabled {
		sweeper := scheduler.NewUploadSweeper(db.GetDB(), store, &cfg.Sweeper)
		if err := sweeper.Start(); err != nil {
			logger.Fatal("Failed to start upload sweeper", err)
		}
		defer sweeper.Stop()
	}

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

func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return storage.NewS3Storage(&cfg.Storage), nil
	default:
		return storage.NewLocalStorage(&cfg.Storage)
	}
}
