package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizhub/database"
	"bizhub/internal/cache"
	"bizhub/internal/conditions"
	"bizhub/internal/config"
	"bizhub/internal/httpapi/handler"
	"bizhub/internal/httpapi/middleware"
	"bizhub/internal/httpapi/repository"
	"bizhub/internal/httpapi/service"

	"github.com/gin-gonic/gin"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	pool, err := database.ConnectPool(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pool.Close()

	// Redis is optional: without it the unread badge falls back to postgres
	unreadCache, err := cache.NewUnreadCache(cfg.RedisAddr, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
	if err != nil {
		logger.Warn("redis_unavailable", "error", err.Error())
		unreadCache = cache.Disabled()
	}
	defer unreadCache.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, cfg)
	evaluator := conditions.NewEvaluator(
		conditions.NewScanner(pool),
		notificationRepo,
		preferenceRepo,
		cfg.LowStockEnabled,
		cfg.OverdueEnabled,
	)
	notificationService := service.NewNotificationService(notificationRepo, evaluator, unreadCache)
	preferenceService := service.NewPreferenceService(preferenceRepo)

	// Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := handler.NewAuthHandler(authService)
	authHandler.RegisterRoutes(r.Group("/api/auth"))

	notifications := r.Group("/api/notifications")
	notifications.Use(middleware.AuthMiddleware(authService))
	handler.NewNotificationHandler(notificationService).RegisterRoutes(notifications)
	handler.NewPreferenceHandler(preferenceService).RegisterRoutes(notifications)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_api_server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown_error", "error", err.Error())
		}
		logger.Info("server_stopped_gracefully")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}
