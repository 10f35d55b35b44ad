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

	"github.com/gin-gonic/gin"

	"github.com/fanvault/user-service/internal/config"
	"github.com/fanvault/user-service/internal/di"
	"github.com/fanvault/user-service/internal/middleware"
	"github.com/fanvault/user-service/pkg/database"
	"github.com/fanvault/user-service/pkg/logger"
	"github.com/fanvault/user-service/pkg/redis"
	"github.com/fanvault/user-service/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	logCfg := &logger.Config{
		Level:       logLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting User Service...")

	ctx := context.Background()

	// Initialize tracing
	if cfg.OTel.Enabled {
		if _, err := telemetry.Init(ctx, &telemetry.Config{
			Enabled:        true,
			ServiceName:    cfg.OTel.ServiceName,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			CollectorAddr:  cfg.OTel.CollectorAddr,
		}); err != nil {
			appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx); err != nil {
					appLog.Warn(fmt.Sprintf("Telemetry shutdown error: %v", err))
				}
			}()
		}
	}

	// Initialize database connection
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     cfg.App.Name,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Initialize Redis. A failed connection is not fatal: token
	// revocation degrades to fail-open and login still works.
	cache, err := redis.NewClient(ctx, &redis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 1 * time.Second,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, token revocation degraded: %v", err))
		cache = nil
	} else {
		defer cache.Close()
		appLog.Info("Redis connected")
	}

	// Build dependency injection container
	container, err := di.NewContainer(ctx, cfg, db, cache)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build container: %v", err))
	}
	defer container.Close()

	// Start background workers
	if err := container.CleanupWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start session cleanup worker: %v", err))
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.App.Name))
	}

	registerRoutes(router, container, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("User Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

func registerRoutes(router *gin.Engine, container *di.Container, cfg *config.Config) {
	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		// Public endpoints
		auth.POST("/register", container.AuthHandler.Register)
		auth.POST("/login", container.AuthHandler.Login)
		auth.POST("/refresh", container.AuthHandler.RefreshToken)
		auth.POST("/logout", container.AuthHandler.Logout)

		// Internal endpoint for token validation (used by other services)
		auth.POST("/validate", container.AuthHandler.ValidateToken)

		// Protected endpoints
		protected := auth.Group("")
		protected.Use(middleware.Auth(container.AuthService, cfg.Auth.PublicPaths))
		{
			protected.POST("/logout-all", container.AuthHandler.LogoutAll)
		}
	}

	users := v1.Group("/users")
	users.Use(middleware.Auth(container.AuthService, cfg.Auth.PublicPaths))
	{
		me := users.Group("/me")
		{
			me.GET("", container.AuthHandler.Me)
			me.DELETE("", container.AuthHandler.Delete)
			me.GET("/sessions", container.AuthHandler.Sessions)
			me.POST("/verify-email", container.AuthHandler.VerifyEmail)
			me.POST("/change-password", container.AuthHandler.ChangePassword)
			me.POST("/deactivate", container.AuthHandler.Deactivate)
		}
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(container.AuthService, nil))
	admin.Use(middleware.RequirePermission("USER_MANAGEMENT"))
	{
		admin.POST("/users/:id/deactivate", container.AuthHandler.AdminDeactivate)
		admin.POST("/users/:id/reactivate", container.AuthHandler.AdminReactivate)
		admin.DELETE("/users/:id", container.AuthHandler.AdminDelete)
	}
}
