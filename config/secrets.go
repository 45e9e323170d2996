package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Secrets is the document described in spec §6: host base URL, token,
// login, and optional pool/retry overrides.
type Secrets struct {
	HostBaseURL string `yaml:"host_base_url"`
	HostToken   string `yaml:"host_token"`
	HostUser    string `yaml:"host_user"`
	PoolSize    int    `yaml:"pool_size,omitempty"`
	RetryCap    int    `yaml:"retry_cap,omitempty"`
}

// LoadSecrets reads and validates a secrets YAML document.
func LoadSecrets(path string) (*Secrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets file %s: %w", path, err)
	}

	var s Secrets
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse secrets file %s: %w", path, err)
	}

	v := NewValidator()
	v.RequireString("host_base_url", s.HostBaseURL)
	v.RequireString("host_token", s.HostToken)
	v.RequireString("host_user", s.HostUser)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("invalid secrets file %s: %w", path, err)
	}

	return &s, nil
}

// Validator accumulates configuration validation errors, matching the
// teacher's config.Validator builder pattern.
type Validator struct {
	errors []string
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{errors: make([]string, 0)}
}

// RequireString records an error if value is empty.
func (v *Validator) RequireString(field, value string) {
	if value == "" {
		v.errors = append(v.errors, fmt.Sprintf("%s is required", field))
	}
}

// RequirePositive records an error if value is not greater than zero.
func (v *Validator) RequirePositive(field string, value int) {
	if value <= 0 {
		v.errors = append(v.errors, fmt.Sprintf("%s must be positive, got %d", field, value))
	}
}

// Err returns a combined error if any validation failed, else nil.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	msg := v.errors[0]
	for _, e := range v.errors[1:] {
		msg += "; " + e
	}
	return fmt.Errorf("%s", msg)
}
