package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/document-metadata-api/internal/backend"
	"github.com/BerylCAtieno/document-metadata-api/internal/batch"
	"github.com/BerylCAtieno/document-metadata-api/internal/config"
	"github.com/BerylCAtieno/document-metadata-api/internal/db"
	"github.com/BerylCAtieno/document-metadata-api/internal/handlers"
	"github.com/BerylCAtieno/document-metadata-api/internal/pagecount"
	"github.com/BerylCAtieno/document-metadata-api/internal/repository"
	"github.com/BerylCAtieno/document-metadata-api/internal/router"
	"github.com/BerylCAtieno/document-metadata-api/internal/services"
	"github.com/BerylCAtieno/document-metadata-api/internal/storage"
	"github.com/BerylCAtieno/document-metadata-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Run migrations
	if err := db.RunMigrations(cfg.DatabasePath); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize database
	database, err := db.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	defer database.Close()

	docRepo := repository.NewDocumentRepository(database)
	chatRepo := repository.NewChatRepository(database)

	// Object storage is optional
	var store storage.Storage
	if cfg.S3Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		store, err = storage.NewS3Storage(ctx, cfg)
		cancel()
		if err != nil {
			logger.Fatal("Failed to initialize S3 storage", "error", err)
		}
		logger.Info("Object storage enabled", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketName)
	}

	if cfg.BackendURL == "" {
		logger.Warn("BACKEND_URL not set, indexing and chat are disabled")
	}
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, logger)

	processor := batch.NewProcessor(pagecount.NewEstimator(), cfg.BatchWorkers, logger)
	docService := services.NewService(docRepo, processor, store, client, logger)
	chatService := services.NewChatService(chatRepo, client, logger)

	// Setup HTTP router
	handler := router.NewRouter(docService, chatService, router.Options{
		Limits: handlers.Limits{
			MaxFileSize:   cfg.MaxFileSize,
			MaxUploadSize: cfg.MaxUploadSize,
		},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
