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
	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets review export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Ingestion
	Timezone          string
	DefaultCurrency   string
	RulesPath         string
	PairingWindow     time.Duration
	PairingHorizon    time.Duration
	ImportParallelism int

	// Backend selection
	DataBackend string
}

func Load() *Config {
	cfg := &Config{
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/bankpoke.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "bankpoke"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "review_export"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Review"),

		Timezone:          getEnv("TIMEZONE", "Asia/Seoul"),
		DefaultCurrency:   getEnv("DEFAULT_CURRENCY", "KRW"),
		RulesPath:         getEnv("RULES_PATH", ""),
		PairingWindow:     getEnvDuration("PAIRING_WINDOW", 5*time.Minute),
		PairingHorizon:    getEnvDuration("PAIRING_HORIZON", 48*time.Hour),
		ImportParallelism: getEnvInt("IMPORT_PARALLELISM", 4),

		DataBackend: getEnv("DATA_BACKEND", "sqlite"),
	}

	return cfg
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.DefaultCurrency == "" {
		errors = append(errors, "default currency cannot be empty")
	}

	if c.RulesPath != "" {
		if _, err := os.Stat(c.RulesPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("rules file does not exist: %s", c.RulesPath))
		}
	}

	if c.PairingWindow <= 0 {
		errors = append(errors, fmt.Sprintf("invalid pairing window %v: must be positive", c.PairingWindow))
	} else if c.PairingWindow > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid pairing window %v: must be at most 1 hour", c.PairingWindow))
	}

	if c.PairingHorizon < c.PairingWindow {
		errors = append(errors, fmt.Sprintf("invalid pairing horizon %v: must be at least the pairing window", c.PairingHorizon))
	}

	if c.ImportParallelism < 1 {
		errors = append(errors, fmt.Sprintf("invalid import parallelism %d: must be at least 1", c.ImportParallelism))
	} else if c.ImportParallelism > 64 {
		errors = append(errors, fmt.Sprintf("invalid import parallelism %d: must be at most 64", c.ImportParallelism))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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
