package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Ledger
	LedgerCurrency string

	// Forecast
	HorizonMonths int

	// FX rate service
	FXBaseURL string
	FXTimeout time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "fluxo"),
		DBPassword: getEnv("DB_PASSWORD", "fluxo"),
		DBName:     getEnv("DB_NAME", "fluxo"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Ledger
		LedgerCurrency: getEnv("LEDGER_CURRENCY", "EUR"),

		// FX
		FXBaseURL: getEnv("FX_BASE_URL", "https://api.frankfurter.dev/v1"),
	}

	horizonStr := getEnv("FORECAST_HORIZON_MONTHS", "18")
	horizon, err := strconv.Atoi(horizonStr)
	if err != nil || horizon <= 0 {
		log.Printf("Warning: invalid FORECAST_HORIZON_MONTHS value '%s', falling back to 18\n", horizonStr)
		horizon = 18
	}
	config.HorizonMonths = horizon

	timeoutStr := getEnv("FX_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		log.Printf("Warning: invalid FX_TIMEOUT value '%s', falling back to 10s\n", timeoutStr)
		timeout = 10 * time.Second
	}
	config.FXTimeout = timeout

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
