package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabasePath string
	LogLevel     string

	// RAG backend; empty URL disables forwarding
	BackendURL     string
	BackendTimeout time.Duration

	// S3; empty endpoint disables object storage
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Upload limits
	MaxFileSize   int64
	MaxUploadSize int64

	BatchWorkers       int
	CORSAllowedOrigins []string
}

// Load reads configuration from the environment, after applying an optional .env file.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "data/documents.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		BackendURL:         strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey:  getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "documents"),
		S3UseSSL:           getEnv("S3_USE_SSL", "false") == "true",
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}

	var err error
	if cfg.BackendTimeout, err = time.ParseDuration(getEnv("BACKEND_TIMEOUT", "120s")); err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}
	if cfg.MaxFileSize, err = getEnvInt64("MAX_FILE_SIZE", 25<<20); err != nil {
		return nil, err
	}
	if cfg.MaxUploadSize, err = getEnvInt64("MAX_UPLOAD_SIZE", 100<<20); err != nil {
		return nil, err
	}
	workers, err := getEnvInt64("BATCH_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	cfg.BatchWorkers = int(workers)

	if cfg.MaxFileSize <= 0 || cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE and MAX_UPLOAD_SIZE must be positive")
	}
	if cfg.MaxFileSize > cfg.MaxUploadSize {
		return nil, fmt.Errorf("MAX_FILE_SIZE (%d) exceeds MAX_UPLOAD_SIZE (%d)", cfg.MaxFileSize, cfg.MaxUploadSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
