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
	// HTTP server
	Port string

	// Preferences store
	SQLiteDBPath string

	// AMQP notification bus (optional; empty URL disables it)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Remote store gateway
	GatewayBackend string
	GatewayURL     string
	GatewayTimeout time.Duration

	// Google Sheets gateway
	GoogleSpreadsheetID     string
	GoogleCardsSheetName    string
	GoogleTransactionsSheet string
	GoogleCredentialsFile   string
	GoogleCredentialsJSON   string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/cardtrack.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "cardtrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		GatewayBackend: getEnv("GATEWAY_BACKEND", "memory"),
		GatewayURL:     getEnv("GATEWAY_URL", ""),
		GatewayTimeout: getEnvDuration("GATEWAY_TIMEOUT", 30*time.Second),

		GoogleSpreadsheetID:     getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleCardsSheetName:    getEnv("GOOGLE_CARDS_SHEET_NAME", "Cards"),
		GoogleTransactionsSheet: getEnv("GOOGLE_TRANSACTIONS_SHEET_NAME", "Transactions"),
		GoogleCredentialsFile:   getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON:   getEnv("GOOGLE_CREDENTIALS_JSON", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate gateway backend
	validBackends := []string{"memory", "apps", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.GatewayBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid gateway backend '%s': must be one of %v", c.GatewayBackend, validBackends))
	}

	// Validate the apps gateway endpoint if backend is apps
	if c.GatewayBackend == "apps" {
		if c.GatewayURL == "" {
			errors = append(errors, "gateway URL is required when using apps backend")
		} else if parsedURL, err := url.Parse(c.GatewayURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid gateway URL '%s': %v", c.GatewayURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid gateway URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	if c.GatewayTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid gateway timeout %v: must be at least 1 second", c.GatewayTimeout))
	} else if c.GatewayTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid gateway timeout %v: must be at most 5 minutes", c.GatewayTimeout))
	}

	// Validate the preferences store path
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate AMQP URL if provided
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

	// Validate Google Sheets configuration if backend is sheets
	if c.GatewayBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleCardsSheetName == "" {
			errors = append(errors, "Google cards sheet name is required when using sheets backend")
		}
		if c.GoogleTransactionsSheet == "" {
			errors = append(errors, "Google transactions sheet name is required when using sheets backend")
		}

		// Must have either credentials file or inline JSON
		hasCredsFile := c.GoogleCredentialsFile != ""
		hasCredsJSON := c.GoogleCredentialsJSON != ""
		if !hasCredsFile && !hasCredsJSON {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for sheets backend")
		}

		// Check if credentials file exists (if specified)
		if hasCredsFile {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	// Return combined errors
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
