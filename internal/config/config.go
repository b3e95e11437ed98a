package config

import (
	"os"
	"strconv"

	"molcure/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Log      LogConfig
	Paths    PathConfig
}

// DatabaseConfig holds database connection settings. The URL may be empty;
// persistence features check for it at the point of use.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds report server settings
type ServerConfig struct {
	Port string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// PathConfig holds file system paths
type PathConfig struct {
	WorkflowFile string
	DatasetFile  string
	ReportDir    string
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
		Paths: PathConfig{
			WorkflowFile: getEnvOrDefault("WORKFLOW_FILE", ""),
			DatasetFile:  getEnvOrDefault("DATASET_FILE", ""),
			ReportDir:    getEnvOrDefault("REPORT_DIR", "."),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("server port must be numeric")
	}
	return nil
}

// Helper for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
