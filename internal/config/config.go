package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	// TokenKey is the 32-byte AEAD key used to encrypt and decrypt POS
	// credentials at rest, base64-encoded in the environment.
	TokenKey []byte

	DB         DatabaseConfig
	Redis      RedisConfig
	Square     SquareConfig
	Clover     CloverConfig
	Lightspeed LightspeedConfig
	Worker     WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SquareConfig contains the Square OAuth application credentials used for
// token refresh.
type SquareConfig struct {
	AppID     string
	AppSecret string
}

// CloverConfig contains the Clover OAuth application identity used for token
// refresh. The v2 refresh exchange authenticates with the refresh token
// itself, so no app secret is needed.
type CloverConfig struct {
	AppID string
}

// LightspeedConfig contains the Lightspeed OAuth application credentials
// used for token refresh.
type LightspeedConfig struct {
	ClientID     string
	ClientSecret string
}

// WorkerConfig contains configuration for background workers.
type WorkerConfig struct {
	CatalogSyncEnabled  bool
	CatalogSyncInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// POS provider OAuth applications
	cfg.Square = SquareConfig{
		AppID:     getEnv("SQUARE_APP_ID", ""),
		AppSecret: getEnv("SQUARE_APP_SECRET", ""),
	}
	cfg.Clover = CloverConfig{
		AppID: getEnv("CLOVER_APP_ID", ""),
	}
	cfg.Lightspeed = LightspeedConfig{
		ClientID:     getEnv("LIGHTSPEED_CLIENT_ID", ""),
		ClientSecret: getEnv("LIGHTSPEED_CLIENT_SECRET", ""),
	}

	// Workers
	cfg.Worker.CatalogSyncEnabled = getEnv("CATALOG_SYNC_ENABLED", "true") == "true"
	var err error
	if cfg.Worker.CatalogSyncInterval, err = parseDurationEnv("CATALOG_SYNC_INTERVAL", "6h"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_SYNC_INTERVAL: %w", err)
	}

	// Token encryption key
	rawKey := getEnv("TOKEN_ENCRYPTION_KEY", "")
	if rawKey == "" {
		return nil, errors.New("TOKEN_ENCRYPTION_KEY must be set to a base64-encoded 32-byte key")
	}
	key, err := base64.StdEncoding.DecodeString(rawKey)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_ENCRYPTION_KEY: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid TOKEN_ENCRYPTION_KEY: expected 32 bytes, got %d", len(key))
	}
	cfg.TokenKey = key

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
