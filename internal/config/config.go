package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Service defaults applied by Defaults.
const (
	DefaultPort              = 8000
	DefaultAllowedOrigin     = "http://localhost:5173"
	DefaultGenerationTimeout = 30 * time.Second
)

// Config is the service configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from flags or defaults.
type Config struct {
	Port              int    `json:"port,omitempty"`
	AllowedOrigin     string `json:"allowed_origin,omitempty"`
	Model             string `json:"model,omitempty"`              // Gemini model for résumé generation
	GenerationTimeout string `json:"generation_timeout,omitempty"` // Go duration, e.g. "30s"
	IntakeWorkers     int    `json:"intake_workers,omitempty"`     // Concurrent PDF analyses
	DatabaseURL       string `json:"database_url,omitempty"`
}

// Defaults returns the built-in service configuration.
func Defaults() Config {
	return Config{
		Port:              DefaultPort,
		AllowedOrigin:     DefaultAllowedOrigin,
		GenerationTimeout: DefaultGenerationTimeout.String(),
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Validate checks that set fields have usable values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.IntakeWorkers < 0 {
		return fmt.Errorf("config error: 'intake_workers' must be non-negative")
	}
	if c.AllowedOrigin != "" {
		u, err := url.Parse(c.AllowedOrigin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'allowed_origin' must be an absolute URL: %s", c.AllowedOrigin)
		}
	}
	if c.GenerationTimeout != "" {
		d, err := time.ParseDuration(c.GenerationTimeout)
		if err != nil {
			return fmt.Errorf("config error: invalid 'generation_timeout': %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'generation_timeout' must be positive")
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.AllowedOrigin == "" {
		result.AllowedOrigin = defaults.AllowedOrigin
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.GenerationTimeout == "" {
		result.GenerationTimeout = defaults.GenerationTimeout
	}
	if result.IntakeWorkers == 0 {
		result.IntakeWorkers = defaults.IntakeWorkers
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	return result
}

// Timeout returns the parsed generation timeout, or the default when unset
// or invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.GenerationTimeout)
	if err != nil || d <= 0 {
		return DefaultGenerationTimeout
	}
	return d
}
