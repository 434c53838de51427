package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/config"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/handler"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/middleware"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/pkg/logger"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/service"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Repositories and seed data
	contracts := service.NewContractStore(cfg.Store.IDPrefix)
	users := service.NewUserStore()
	accounts, err := service.Bootstrap(contracts, users, cfg)
	if err != nil {
		slog.Error("failed to seed data", "error", err)
		os.Exit(1)
	}

	workflow := service.NewWorkflowService(contracts, users)

	// Attachment storage
	storage, err := service.NewAttachmentStorage(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize attachment storage", "error", err)
		os.Exit(1)
	}
	if err := storage.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure attachment bucket", "error", err)
		os.Exit(1)
	}

	// AI assistant; degrades to fallbacks when no key is configured
	assistant, err := service.NewGeminiAssistant(context.Background(), &cfg.AI)
	if err != nil {
		slog.Error("failed to initialize AI assistant", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg, accounts, users)
	contractHandler := handler.NewContractHandler(contracts, workflow)
	attachmentHandler := handler.NewAttachmentHandler(contracts, storage, workflow)
	aiHandler := handler.NewAIHandler(contracts, assistant, workflow)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.GET("/users", authHandler.ListUsers)

		protected.GET("/contracts", contractHandler.List)
		protected.POST("/contracts", contractHandler.Create)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.PUT("/contracts/:id", contractHandler.Update)
		protected.POST("/contracts/:id/submit", contractHandler.Submit)
		protected.POST("/contracts/:id/decision", contractHandler.Decide)
		protected.POST("/contracts/:id/comments", contractHandler.AddComment)
		protected.POST("/contracts/:id/comments/read", contractHandler.MarkCommentsRead)
		protected.POST("/contracts/:id/reviewers", contractHandler.AddReviewer)
		protected.POST("/contracts/:id/attachments", attachmentHandler.Upload)
		protected.GET("/contracts/:id/attachments/:name", attachmentHandler.Download)
		protected.POST("/contracts/:id/analysis", aiHandler.Analyze)
		protected.POST("/ai/refine", aiHandler.Refine)

		protected.GET("/metrics", contractHandler.Metrics)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
