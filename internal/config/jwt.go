// Package config provides configuration loading for the job assistant service.
package config

import (
	"fmt"
	"os"
	"time"
)

// DefaultJWTExpirationMinutes is the access token lifetime when
// JWT_EXPIRATION_MINUTES is unset.
const DefaultJWTExpirationMinutes = 30

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret            string
	ExpirationMinutes int
}

// NewJWTConfig creates a JWT configuration from JWT_SECRET (required) and
// JWT_EXPIRATION_MINUTES (default 30).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	minutes, err := envInt("JWT_EXPIRATION_MINUTES", DefaultJWTExpirationMinutes)
	if err != nil {
		return nil, err
	}

	config := &JWTConfig{
		Secret:            secret,
		ExpirationMinutes: minutes,
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// Expiration returns the token lifetime.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationMinutes < 1 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES must be at least 1, got: %d", c.ExpirationMinutes)
	}
	return nil
}
