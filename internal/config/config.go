package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP. Empty URL disables the mutation queue entirely.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Catalog. Empty path uses the embedded defaults.
	CatalogPath string

	// Google Sheets mirror
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Forecast cache
	ForecastCacheTTL time.Duration

	// Mirror selection: "google" or "memory".
	MirrorBackend string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/studioledger.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "studioledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_mutations"),

		CatalogPath: getEnv("CATALOG_PATH", ""),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", ""),

		ForecastCacheTTL: getEnvDuration("FORECAST_CACHE_TTL", 5*time.Minute),

		MirrorBackend: getEnv("MIRROR_BACKEND", "memory"),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CatalogPath != "" {
		if _, err := os.Stat(c.CatalogPath); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("catalog file does not exist: %s", c.CatalogPath))
		}
	}

	switch c.MirrorBackend {
	case "memory":
	case "google":
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when using the google mirror")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid mirror backend '%s': must be 'memory' or 'google'", c.MirrorBackend))
	}

	if c.ForecastCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid forecast cache TTL %v: must be at least 1 second", c.ForecastCacheTTL))
	} else if c.ForecastCacheTTL > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid forecast cache TTL %v: must be at most 24 hours", c.ForecastCacheTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
