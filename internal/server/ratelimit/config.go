package ratelimit

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadConfig reads RATE_LIMIT_* environment variables over DefaultConfig.
// Malformed values are errors rather than silently replaced by defaults.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	env := envReader{}

	cfg.Enabled = env.bool("RATE_LIMIT_ENABLED", cfg.Enabled)
	cfg.MaxRequests = env.int("RATE_LIMIT_MAX_REQUESTS", cfg.MaxRequests)
	cfg.Window = env.duration("RATE_LIMIT_WINDOW", cfg.Window)
	cfg.CleanupInterval = env.duration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Whitelist = env.ipSet("RATE_LIMIT_WHITELIST")
	cfg.Blacklist = env.ipSet("RATE_LIMIT_BLACKLIST")

	if env.err != nil {
		return nil, env.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the limits of an enabled configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxRequests < 1 {
		return fmt.Errorf("rate limit: max requests must be positive, got %d", c.MaxRequests)
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate limit: window must be positive, got %v", c.Window)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("rate limit: cleanup interval must not be negative, got %v", c.CleanupInterval)
	}
	return nil
}

// envReader keeps the first parse error so callers check once.
type envReader struct {
	err error
}

func (r *envReader) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != "" && r.err == nil
}

func (r *envReader) fail(key, value string, err error) {
	r.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
}

func (r *envReader) int(key string, def int) int {
	raw, ok := r.lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(key, raw, err)
		return def
	}
	return v
}

func (r *envReader) bool(key string, def bool) bool {
	raw, ok := r.lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(key, raw, err)
		return def
	}
	return v
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	raw, ok := r.lookup(key)
	if !ok {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.fail(key, raw, err)
		return def
	}
	return v
}

// ipSet parses a comma-separated list of client addresses.
func (r *envReader) ipSet(key string) map[string]bool {
	set := make(map[string]bool)
	raw, ok := r.lookup(key)
	if !ok {
		return set
	}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if net.ParseIP(entry) == nil {
			r.fail(key, entry, fmt.Errorf("not an IP address"))
			return set
		}
		set[entry] = true
	}
	return set
}
