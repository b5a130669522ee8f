package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const configFileName = "shifthub_config.yaml"

// Defaults applied when the config file omits optional fields.
const (
	DefaultSweepIntervalMinutes = 60
	DefaultSweepPageSize        = 100
)

// Config represents the application configuration.
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// NATSURL enables the NATS event bus; empty means the in-process bus.
	NATSURL string `yaml:"natsURL,omitempty"`

	SweepIntervalMinutes int `yaml:"sweepIntervalMinutes,omitempty" validate:"omitempty,min=1"`
	SweepPageSize        int `yaml:"sweepPageSize,omitempty" validate:"omitempty,min=1,max=1000"`

	// MetricsAddr serves Prometheus metrics from the sweep daemon when set,
	// e.g. ":9437".
	MetricsAddr string `yaml:"metricsAddr,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from shifthub_config.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.SweepIntervalMinutes == 0 {
		cfg.SweepIntervalMinutes = DefaultSweepIntervalMinutes
	}
	if cfg.SweepPageSize == 0 {
		cfg.SweepPageSize = DefaultSweepPageSize
	}
}

// findConfigFile searches for shifthub_config.yaml in the current directory
// and the home directory.
func findConfigFile() (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
