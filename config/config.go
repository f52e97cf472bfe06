package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server configuration
	ListenAddr string

	// Scheduler configuration
	TickInterval time.Duration

	// Casino configuration
	InitialBalance int64
	Timezone       string // IANA zone the round day boundary is computed in

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
		ListenAddr:  os.Getenv("LISTEN_ADDR"),

		// Defaults
		TickInterval:   time.Second,
		InitialBalance: 100000,
		Timezone:       "UTC",

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if tick := os.Getenv("TICK_INTERVAL"); tick != "" {
		parsed, err := time.ParseDuration(tick)
		if err != nil {
			return nil, fmt.Errorf("invalid TICK_INTERVAL %q: %w", tick, err)
		}
		config.TickInterval = parsed
	}
	if balance := os.Getenv("INITIAL_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.InitialBalance = parsedBalance
		}
	}
	if tz := os.Getenv("CASINO_TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid CASINO_TIMEZONE %q: %w", tz, err)
		}
		config.Timezone = tz
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

// Location resolves the configured timezone. The zone is validated at load
// time, so resolution here cannot fail.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
