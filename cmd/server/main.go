package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/meenabazaar/order-management/configs"
	"github.com/meenabazaar/order-management/internal/application/services"
	"github.com/meenabazaar/order-management/internal/core/ports"
	"github.com/meenabazaar/order-management/internal/infrastructure/email"
	"github.com/meenabazaar/order-management/internal/infrastructure/health"
	"github.com/meenabazaar/order-management/internal/infrastructure/httpserver"
	"github.com/meenabazaar/order-management/internal/infrastructure/mongodb"
	"github.com/meenabazaar/order-management/internal/infrastructure/redis"
	"github.com/meenabazaar/order-management/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting order management application...")

	// Initialize MongoDB
	database, err := mongodb.NewDatabase(&cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = database.Close(ctx)
	}()

	logger.Info("Connected to MongoDB successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Shared cache, invalidator and reset guard
	redisCache := redis.NewRedisCache(redisClient, cfg.Cache.KeyPrefix)
	invalidator := repositories.NewInvalidator(redisCache, logger)
	resetGuard := repositories.NewResetGuardRepository(redisCache, logger)

	// Store repositories
	baseOrderRepo := repositories.NewOrderRepository(database, logger)
	baseUserRepo := repositories.NewUserRepository(database, logger)
	branchRepo := repositories.NewBranchRepository(database, logger)

	// Decorate with cache-aside
	orderRepo := repositories.NewCachingOrderRepository(baseOrderRepo, redisCache, invalidator, cfg.Cache.EntryTTL, logger)
	userRepo := repositories.NewCachingUserRepository(baseUserRepo, redisCache, invalidator, cfg.Cache.EntryTTL, logger)

	// Email service
	emailService, err := email.NewEmailService(&cfg.Email, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}

	// Wire services
	authService := services.NewAuthService(userRepo, &cfg.JWT, logger)
	userService := services.NewUserService(userRepo, branchRepo, emailService, resetGuard, &cfg.ResetGuard, logger)
	orderService := services.NewOrderService(orderRepo, logger)
	branchService := services.NewBranchService(branchRepo, orderRepo, userRepo, invalidator, logger)

	hcSlice := []ports.HealthChecker{
		health.NewMongoHealthChecker(database),
		health.NewRedisHealthChecker(redisClient),
	}

	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	deps := httpserver.ServerDeps{
		AuthService:    authService,
		UserService:    userService,
		OrderService:   orderService,
		BranchService:  branchService,
		HealthCheckers: hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
