package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the bridge.
type Config struct {
	Environment string `validate:"required,oneof=development staging production"`
	Port        string `validate:"required,numeric"`
	Worker      WorkerConfig
	Log         LogConfig
	Store       StoreConfig
	RateLimit   RateLimitConfig
}

// WorkerConfig holds the application worker collaborator settings.
type WorkerConfig struct {
	UpstreamURL    string `validate:"required,url"`
	BasePath       string
	ScriptFilename string
	TimeoutSeconds int `validate:"gte=1,lte=900"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `validate:"required,oneof=trace debug info warn error"`
}

// StoreConfig holds the invocation audit store configuration.
type StoreConfig struct {
	Enabled bool
	Path    string
}

// RateLimitConfig holds the emulator's rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `validate:"gt=0"`
	Burst             int     `validate:"gte=1"`
}

// Load loads configuration from environment variables and an optional .env
// file, then validates it.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("PORT", "9001")
	viper.SetDefault("WORKER_UPSTREAM_URL", "http://127.0.0.1:8081")
	viper.SetDefault("WORKER_BASE_PATH", "/var/task")
	viper.SetDefault("WORKER_TIMEOUT_SECONDS", 30)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_ENABLED", false)
	viper.SetDefault("STORE_PATH", "./data/invocations.db")
	viper.SetDefault("RATE_LIMIT_RPS", 50.0)
	viper.SetDefault("RATE_LIMIT_BURST", 100)

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Worker: WorkerConfig{
			UpstreamURL:    viper.GetString("WORKER_UPSTREAM_URL"),
			BasePath:       viper.GetString("WORKER_BASE_PATH"),
			ScriptFilename: viper.GetString("WORKER_SCRIPT_FILENAME"),
			TimeoutSeconds: viper.GetInt("WORKER_TIMEOUT_SECONDS"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Store: StoreConfig{
			Enabled: viper.GetBool("STORE_ENABLED"),
			Path:    viper.GetString("STORE_PATH"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt gets an environment variable as integer with a fallback value
func GetEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
