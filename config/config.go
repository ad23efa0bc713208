package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Notification webhook configuration
	WebhookID    string
	WebhookToken string

	// Ledger configuration
	EloK        float64 // K-factor applied to duel rating changes
	StartingElo float64 // Elo assigned to newly created accounts

	// IdempotentEloReversal enables the corrected one-time Elo reversal for
	// reverted duels. Off by default: the historical behavior re-applies the
	// reversal on every save of an already-reverted duel.
	IdempotentEloReversal bool

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

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		WebhookID:    os.Getenv("DISCORD_WEBHOOK_ID"),
		WebhookToken: os.Getenv("DISCORD_WEBHOOK_TOKEN"),

		// Ledger settings with defaults
		EloK:        32,
		StartingElo: 1000,

		IdempotentEloReversal: os.Getenv("IDEMPOTENT_ELO_REVERSAL") == "true",

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if k := os.Getenv("ELO_K"); k != "" {
		if parsedK, err := strconv.ParseFloat(k, 64); err == nil {
			config.EloK = parsedK
		}
	}
	if elo := os.Getenv("STARTING_ELO"); elo != "" {
		if parsedElo, err := strconv.ParseFloat(elo, 64); err == nil {
			config.StartingElo = parsedElo
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
