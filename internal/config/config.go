package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"negmdf/domain/geometry"
	"negmdf/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Screening ScreeningConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Output    OutputConfig
	LogLevel  string
}

// ScreeningConfig holds the geometric screening settings
type ScreeningConfig struct {
	Tolerance float64
	MaxPoints int
	Workers   int
}

// DatabaseConfig holds database connection settings. An empty URL disables persistence.
type DatabaseConfig struct {
	URL    string
	Driver string
}

// Enabled reports whether runs should be persisted.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// OutputConfig holds result writer settings
type OutputConfig struct {
	Format string
}

// Supported values
var (
	Drivers       = []string{"postgres", "sqlite"}
	OutputFormats = []string{"csv", "jsonl", "xlsx"}
)

// Load reads configuration from environment variables, seeding them from the
// given .env files first (missing files are ignored), and validates it
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", f)
		}
	}

	screening, err := loadScreeningConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		Screening: screening,
		Database: DatabaseConfig{
			URL:    getEnvOrDefault("DATABASE_URL", ""),
			Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "postgres")),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Output: OutputConfig{
			Format: strings.ToLower(getEnvOrDefault("OUTPUT_FORMAT", "csv")),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadScreeningConfig() (ScreeningConfig, error) {
	tolerance, err := getEnvFloatOrDefault("TOLERANCE", geometry.DefaultTolerance)
	if err != nil {
		return ScreeningConfig{}, err
	}
	maxPoints, err := getEnvIntOrDefault("MAX_EXPANSION_POINTS", geometry.DefaultMaxPoints)
	if err != nil {
		return ScreeningConfig{}, err
	}
	workers, err := getEnvIntOrDefault("SCREEN_WORKERS", runtime.NumCPU())
	if err != nil {
		return ScreeningConfig{}, err
	}
	return ScreeningConfig{
		Tolerance: tolerance,
		MaxPoints: maxPoints,
		Workers:   workers,
	}, nil
}

// Validate checks value ranges; it is rerun after CLI flags override fields.
func (c *Config) Validate() error {
	t := c.Screening.Tolerance
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("TOLERANCE must be a finite non-negative number, got %v", t))
	}
	if c.Screening.MaxPoints < 0 {
		return errors.ConfigInvalid("MAX_EXPANSION_POINTS must be >= 0")
	}
	if c.Screening.Workers < 1 {
		return errors.ConfigInvalid("SCREEN_WORKERS must be >= 1")
	}
	if !contains(Drivers, c.Database.Driver) {
		return errors.ConfigInvalid(fmt.Sprintf("DATABASE_DRIVER must be one of %s", strings.Join(Drivers, ", ")))
	}
	if !contains(OutputFormats, c.Output.Format) {
		return errors.ConfigInvalid(fmt.Sprintf("OUTPUT_FORMAT must be one of %s", strings.Join(OutputFormats, ", ")))
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Set but unparsable numeric values are a configuration error, not a default.
func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return floatValue, nil
}
