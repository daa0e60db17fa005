package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultModel       = "mistralai/mistral-7b-instruct:free"
	DefaultUpstreamURL = "https://openrouter.ai/api/v1"

	// APIKeyEnv is looked up on every relay request, never cached at startup.
	APIKeyEnv = "OPENROUTER_API_KEY"
)

const (
	StoreBolt     = "bolt"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	// Server
	Port            string
	Env             string
	ShutdownTimeout int // seconds

	// Upstream provider
	UpstreamURL  string
	DefaultModel string

	// Frontend
	FrontendURL string

	// Logging
	LogFile  string
	LogLevel string
}

type ClientConfig struct {
	RelayURL string

	// Storage
	Store       string
	DBPath      string
	ClientID    string
	RedisURL    string
	DatabaseURL string

	LogFile  string
	LogLevel string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		Env:             getEnvOrDefault("ENV", "development"),
		ShutdownTimeout: getEnvAsIntOrDefault("SHUTDOWN_TIMEOUT_SECONDS", 30),
		UpstreamURL:     getEnvOrDefault("OPENROUTER_BASE_URL", DefaultUpstreamURL),
		DefaultModel:    getEnvOrDefault("DEFAULT_MODEL", DefaultModel),
		FrontendURL:     getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		LogFile:         getEnvOrDefault("LOG_FILE", ""),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// LoadClient reads the terminal client settings. The connection string of
// the selected store is required; the others are ignored.
func LoadClient() (*ClientConfig, error) {
	godotenv.Load()

	cfg := &ClientConfig{
		RelayURL: getEnvOrDefault("RELAY_URL", "http://localhost:8080/api/openai"),
		Store:    getEnvOrDefault("CHAT_STORE", StoreBolt),
		DBPath:   getEnvOrDefault("CHAT_DB_PATH", "reinai.db"),
		ClientID: getEnvOrDefault("CHAT_CLIENT_ID", "default"),
		LogFile:  getEnvOrDefault("LOG_FILE", ""),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "warn"),
	}

	switch cfg.Store {
	case StoreBolt:
	case StoreRedis:
		url, err := requireEnv("REDIS_URL")
		if err != nil {
			return nil, err
		}
		cfg.RedisURL = url
	case StorePostgres:
		url, err := requireEnv("DATABASE_URL")
		if err != nil {
			return nil, err
		}
		cfg.DatabaseURL = url
	default:
		return nil, fmt.Errorf("unknown CHAT_STORE %q (want %s, %s or %s)", cfg.Store, StoreBolt, StoreRedis, StorePostgres)
	}

	return cfg, nil
}

// APIKey returns the provider credential currently in the environment.
func APIKey() string {
	return os.Getenv(APIKeyEnv)
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return val, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
