package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"complaint_map/internal/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	SpreadsheetID     string
	SheetName         string
	CredentialsFile   string
	TokenFile         string
	HTTPAddr          string
	RequestsPerMinute int
}

// RateConfig returns the Sheets request pacing for this configuration.
func (c *Config) RateConfig() config.RateConfig {
	return config.RateConfig{
		RequestsPerMinute: c.RequestsPerMinute,
		Burst:             config.DefaultRequestBurst,
	}
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	production := os.Getenv("ENV") == "production"
	if production {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	level, known := parseLogLevel(levelStr, production)
	zerolog.SetGlobalLevel(level)
	if !known {
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// parseLogLevel maps LOGLEVEL to a zerolog level. An empty value picks warn in
// production and info elsewhere; an unknown value falls back to info.
func parseLogLevel(levelStr string, production bool) (zerolog.Level, bool) {
	switch levelStr {
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "fatal":
		return zerolog.FatalLevel, true
	case "panic":
		return zerolog.PanicLevel, true
	case "disabled":
		return zerolog.Disabled, true
	case "":
		if production {
			return zerolog.WarnLevel, true
		}
		return zerolog.InfoLevel, true
	default:
		return zerolog.InfoLevel, false
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	spreadsheetID := os.Getenv("SPREADSHEET_ID")
	if spreadsheetID == "" {
		return nil, fmt.Errorf("SPREADSHEET_ID environment variable is required")
	}

	rpm := config.DefaultRequestsPerMinute
	if v := os.Getenv("SHEETS_REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SHEETS_REQUESTS_PER_MINUTE must be an integer: %w", err)
		}
		rpm = n
	}

	return &Config{
		SpreadsheetID:     spreadsheetID,
		SheetName:         getEnvDefault("SHEET_NAME", "Sheet1"),
		CredentialsFile:   getEnvDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		TokenFile:         getEnvDefault("GOOGLE_TOKEN_FILE", "token.json"),
		HTTPAddr:          getEnvDefault("HTTP_ADDR", ":8080"),
		RequestsPerMinute: rpm,
	}, nil
}

func getEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
