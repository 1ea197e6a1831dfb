// Package config loads server configuration from the environment, with an
// optional .env file for local development. Flags in cmd/server override
// whatever is loaded here.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Calendar CalendarConfig
}

// AppConfig holds HTTP server configuration.
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// DatabaseConfig holds the SQLite database location. ":memory:" is accepted
// for throwaway instances.
type DatabaseConfig struct {
	Path string
}

// CalendarConfig holds the public-holiday source settings. Region is a German
// federal state code as understood by feiertage-api.de (e.g. "SN").
type CalendarConfig struct {
	BaseURL string
	Region  string
}

func Load() (*Config, error) {
	// A missing .env is fine; the environment alone may be complete.
	_ = godotenv.Load()

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Port:     appPort,
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "working-time.db"),
		},
		Calendar: CalendarConfig{
			BaseURL: getEnv("CALENDAR_BASE_URL", ""),
			Region:  getEnv("CALENDAR_REGION", "SN"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Calendar.Region == "" {
		return fmt.Errorf("CALENDAR_REGION is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
