package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogLevel           string

	// Pricing rate card used for quote generation. All amounts are cents.
	LaborRateCents int64
	RoomRateCents  int64
	SqftRateCents  int64
	FeeCreditPct   int64
	PlatformFeePct int64

	// Policy: whether an unresolved dispute blocks completion verification.
	DisputeBlocksCompletion bool

	// Staleness sweep settings
	JobStaleAfterHours   int
	SweepIntervalMinutes int
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		LaborRateCents: getEnvInt64("LABOR_RATE_CENTS", 7500),
		RoomRateCents:  getEnvInt64("ROOM_RATE_CENTS", 5000),
		SqftRateCents:  getEnvInt64("SQFT_RATE_CENTS", 25),
		FeeCreditPct:   getEnvInt64("FEE_CREDIT_PERCENT", 5),
		PlatformFeePct: getEnvInt64("PLATFORM_FEE_PERCENT", 10),

		DisputeBlocksCompletion: getEnvBool("DISPUTE_BLOCKS_COMPLETION", false),

		JobStaleAfterHours:   getEnvInt("JOB_STALE_AFTER_HOURS", 720),
		SweepIntervalMinutes: getEnvInt("SWEEP_INTERVAL_MINUTES", 60),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// GetConfig returns the loaded configuration instance
func GetConfig() *Config {
	return appConfig
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.LaborRateCents <= 0 || c.RoomRateCents < 0 || c.SqftRateCents < 0 {
		return fmt.Errorf("pricing rates must be non-negative and LABOR_RATE_CENTS positive")
	}
	if c.PlatformFeePct < 0 || c.PlatformFeePct > 100 {
		return fmt.Errorf("PLATFORM_FEE_PERCENT must be between 0 and 100")
	}
	if c.FeeCreditPct < 0 || c.FeeCreditPct > 100 {
		return fmt.Errorf("FEE_CREDIT_PERCENT must be between 0 and 100")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

// getEnvInt64 retrieves an int64 environment variable or returns a default value
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
		log.Printf("Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.Printf("Invalid boolean for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}

// TestDefaults returns a configuration suitable for tests: in-memory friendly
// rates matching the documented defaults, no external services.
func TestDefaults() *Config {
	return &Config{
		DatabaseURL:    "sqlite::memory:",
		Port:           "8080",
		GoEnv:          "test",
		LaborRateCents: 7500,
		RoomRateCents:  5000,
		SqftRateCents:  25,
		FeeCreditPct:   5,
		PlatformFeePct: 10,

		JobStaleAfterHours:   720,
		SweepIntervalMinutes: 60,
	}
}
