package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server configuration
	HTTPAddr string

	// Admin API authentication
	AdminJWTSecret string

	// Ledger configuration
	StartingBalance int64

	// History query defaults
	HistoryLimit int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from the environment, with an optional .env
// file for local development.
func load() (*Config, error) {
	// Missing .env is fine; real deployments set variables directly
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		// Defaults
		StartingBalance: 1000,
		HistoryLimit:    50,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		parsed, err := strconv.ParseInt(balance, 10, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid STARTING_BALANCE %q", balance)
		}
		config.StartingBalance = parsed
	}
	if limit := os.Getenv("HISTORY_LIMIT"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid HISTORY_LIMIT %q", limit)
		}
		config.HistoryLimit = parsed
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.AdminJWTSecret == "" {
			return nil, fmt.Errorf("ADMIN_JWT_SECRET is required")
		}
	}

	return config, nil
}
