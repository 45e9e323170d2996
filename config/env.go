// Package config provides environment-variable configuration loading for
// process-level knobs, plus YAML document loaders for the secrets, provider,
// and pricing files described in spec §6.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvConfig loads configuration from environment variables with an optional
// prefix, following the same Get*/MustGet* shape the rest of the pack uses.
type EnvConfig struct {
	prefix string
}

// NewEnvConfig creates an environment loader scoped to an optional prefix.
func NewEnvConfig(prefix string) *EnvConfig {
	return &EnvConfig{prefix: prefix}
}

func (ec *EnvConfig) buildKey(key string) string {
	if ec.prefix != "" {
		return ec.prefix + "_" + key
	}
	return key
}

// GetString retrieves a string value from environment with optional default.
func (ec *EnvConfig) GetString(key, defaultValue string) string {
	if v := os.Getenv(ec.buildKey(key)); v != "" {
		return v
	}
	return defaultValue
}

// MustGetString retrieves a required string value from environment or panics.
func (ec *EnvConfig) MustGetString(key string) string {
	fullKey := ec.buildKey(key)
	v := os.Getenv(fullKey)
	if v == "" {
		panic(fmt.Sprintf("required environment variable %s not set", fullKey))
	}
	return v
}

// GetInt retrieves an integer value from environment with optional default.
func (ec *EnvConfig) GetInt(key string, defaultValue int) int {
	if v := os.Getenv(ec.buildKey(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean value from environment with optional default.
func (ec *EnvConfig) GetBool(key string, defaultValue bool) bool {
	if v := os.Getenv(ec.buildKey(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// GetDuration retrieves a duration value from environment with optional default.
func (ec *EnvConfig) GetDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(ec.buildKey(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetStringSlice retrieves a comma-separated string slice from environment.
func (ec *EnvConfig) GetStringSlice(key string, defaultValue []string) []string {
	v := os.Getenv(ec.buildKey(key))
	if v == "" {
		return defaultValue
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// RuntimeConfig holds the process-level knobs every stage service needs.
type RuntimeConfig struct {
	DataDir      string
	MaxWorkers   int
	ClientTimeout time.Duration
	RetryCap     int
	PoolSize     int
}

// LoadRuntimeConfig loads RuntimeConfig from environment, prefix "WORKRECAP".
func LoadRuntimeConfig() RuntimeConfig {
	env := NewEnvConfig("WORKRECAP")
	return RuntimeConfig{
		DataDir:       env.GetString("DATA_DIR", "./data"),
		MaxWorkers:    env.GetInt("MAX_WORKERS", 4),
		ClientTimeout: env.GetDuration("CLIENT_TIMEOUT", 30*time.Second),
		RetryCap:      env.GetInt("RETRY_CAP", 7),
		PoolSize:      env.GetInt("POOL_SIZE", 4),
	}
}

// MaskSecret shows the first and last 4 characters of a secret for safe
// logging, matching the teacher's common.MaskSecret convention.
func MaskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
