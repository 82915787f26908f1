package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort string

	// Empty means the built-in seed catalog.
	CatalogDBPath string

	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
}

// Load reads .env if present, then the process environment.
func Load() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		AppEnv:                 getEnv("APP_ENV", "dev"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		CatalogDBPath:          getEnv("CATALOG_DB_PATH", ""),
		SessionTTL:             getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionCleanupInterval: getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Minute),
		RequestTimeout:         getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout:        getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize:     getEnvInt64("MAX_REQUEST_BODY_SIZE", 1<<20), // 1MB
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getEnvInt64(key string, defaultValue int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
