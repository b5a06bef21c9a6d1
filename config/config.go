// Package config provides configuration management and environment variable handling for the application
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/cereal-box/utils"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the cereal.box service
type Config struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Deployment DeploymentConfig `json:"deployment"`
}

type DatabaseConfig struct {
	// URL is a Postgres connection URL or key=value DSN; empty disables persistence
	URL            string        `json:"-"`
	ConnectTimeout time.Duration `json:"connect_timeout" validate:"gt=0"`
	// FailOpen keeps the server running without persistence when the database is unavailable
	FailOpen        bool          `json:"fail_open"`
	MaxOpenConns    int           `json:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `json:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" validate:"gte=0"`
	SlowQueryTime   time.Duration `json:"slow_query_time" validate:"gte=0"`
}

// Configured reports whether a connection string was supplied
func (c DatabaseConfig) Configured() bool {
	return strings.TrimSpace(c.URL) != ""
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `json:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `json:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `json:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `json:"request_timeout" validate:"gt=0"`
}

// Address returns the host:port the HTTP listener binds to
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LoggingConfig struct {
	Level      string `json:"level" validate:"oneof=debug info warn error"`
	Output     string `json:"output" validate:"oneof=stdout file both"`
	FilePath   string `json:"file_path" validate:"required_unless=Output stdout"`
	MaxSize    int    `json:"max_size" validate:"gte=1"` // MB
	MaxBackups int    `json:"max_backups" validate:"gte=0"`
	MaxAge     int    `json:"max_age" validate:"gte=0"` // days
	Compress   bool   `json:"compress"`

	EnableAccessLog bool `json:"enable_access_log"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port" validate:"gte=1,lte=65535"`
	Path    string `json:"path" validate:"startswith=/"`
}

// Address returns the host:port the metrics listener binds to
func (c MetricsConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DeploymentConfig struct {
	Environment string `json:"environment" validate:"oneof=production development local test"`
	Version     string `json:"version"`
}

// IsDevelopment reports whether development-only surfaces should be exposed
func (c DeploymentConfig) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:             getEnvString("DATABASE_URL", ""),
			ConnectTimeout:  getEnvDuration("DB_CONNECT_TIMEOUT", utils.DefaultConnectTimeout),
			FailOpen:        getEnvBool("DB_FAIL_OPEN", true),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 1),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 0),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 1*time.Second),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("PORT", 3000),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvDuration("SERVER_REQUEST_TIMEOUT", utils.DefaultRequestTimeout),
		},
		Logging: LoggingConfig{
			Level:           getEnvString("LOG_LEVEL", "info"),
			Output:          getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:        getEnvString("LOG_FILE_PATH", "logs/cereal-box.log"),
			MaxSize:         getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups:      getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:          getEnvInt("LOG_MAX_AGE", 30),
			Compress:        getEnvBool("LOG_COMPRESS", true),
			EnableAccessLog: getEnvBool("LOG_ENABLE_ACCESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Host:    getEnvString("METRICS_HOST", "0.0.0.0"),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Deployment: DeploymentConfig{
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("APP_VERSION", "unknown"),
		},
	}

	// Validate the loaded configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads environment variables from the given file if it exists.
// Variables already set to a non-empty value are left untouched.
func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}

	values, err := godotenv.Read(envFile)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", envFile, err)
	}

	for key, value := range values {
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set %s: %w", key, err)
			}
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("5s") or a bare number of milliseconds ("5000")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, getValidationErrorMessage(fieldErr))
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(messages, "; "))
}

func getValidationErrorMessage(err validator.FieldError) string {
	field := err.Namespace()
	switch err.Tag() {
	case "required", "required_unless":
		return field + " is required"
	case "oneof":
		return field + " must be one of: " + err.Param()
	case "startswith":
		return field + " must start with " + err.Param()
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, err.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, err.Param())
	default:
		return field + " is invalid"
	}
}
