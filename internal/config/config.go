package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Experiment ExperimentConfig
	Paths      PathConfig
}

// DatabaseConfig holds database connection settings. Persistence is optional:
// an empty URL disables the run repository.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ExperimentConfig holds resampling-evaluation defaults
type ExperimentConfig struct {
	Repeat     int
	Workers    int
	Seed       int64
	TrainFolds int
	MaxLR      float64
}

// PathConfig holds file system paths
type PathConfig struct {
	DataFile   string
	ReportFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Experiment: ExperimentConfig{
			Repeat:     getEnvIntOrDefault("EXP_REPEAT", 10),
			Workers:    getEnvIntOrDefault("EXP_WORKERS", 4),
			Seed:       int64(getEnvIntOrDefault("EXP_SEED", 42)),
			TrainFolds: getEnvIntOrDefault("EXP_TRAIN_FOLDS", 0),
			MaxLR:      getEnvFloatOrDefault("EXP_MAX_LR", 10),
		},
		Paths: PathConfig{
			DataFile:   getEnvOrDefault("DATA_FILE", ""),
			ReportFile: getEnvOrDefault("REPORT_FILE", "report.md"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Experiment.Repeat < 1 {
		return fmt.Errorf("EXP_REPEAT must be at least 1, got %d", config.Experiment.Repeat)
	}
	if config.Experiment.Workers < 1 {
		return fmt.Errorf("EXP_WORKERS must be at least 1, got %d", config.Experiment.Workers)
	}
	if config.Experiment.MaxLR <= 1 {
		return fmt.Errorf("EXP_MAX_LR must exceed 1, got %g", config.Experiment.MaxLR)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
