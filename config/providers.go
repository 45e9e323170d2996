package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strategy is the router-wide model-selection mode from spec §4.3.
type Strategy string

const (
	StrategyEconomy  Strategy = "economy"
	StrategyStandard Strategy = "standard"
	StrategyPremium  Strategy = "premium"
	StrategyAdaptive Strategy = "adaptive"
	StrategyFixed    Strategy = "fixed"
)

// ProviderCreds holds one provider's credentials, optional base URL, and an
// optional queries-per-second cap the Router enforces before every call.
type ProviderCreds struct {
	APIKey  string  `yaml:"api_key"`
	BaseURL string  `yaml:"base_url,omitempty"`
	QPS     float64 `yaml:"qps,omitempty"`
}

// TaskBinding maps a task name to a concrete provider/model pairing.
type TaskBinding struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	EscalationModel string `yaml:"escalation_model,omitempty"`
	MaxTokens       int    `yaml:"max_tokens,omitempty"`
}

// ProviderConfig is the document described in spec §4.3 / §6.
type ProviderConfig struct {
	Strategy  Strategy                 `yaml:"strategy"`
	Providers map[string]ProviderCreds `yaml:"providers"`
	Tasks     map[string]TaskBinding   `yaml:"tasks"`
}

// LoadProviderConfig reads, parses, and validates a provider-config document.
// Validation fails fast if any task references an unconfigured provider,
// matching spec §4.3's "validates that every referenced provider is
// configured and fails fast otherwise".
func LoadProviderConfig(path string) (*ProviderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read provider config %s: %w", path, err)
	}

	var pc ProviderConfig
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("parse provider config %s: %w", path, err)
	}

	if pc.Strategy == "" {
		pc.Strategy = StrategyStandard
	}

	for task, binding := range pc.Tasks {
		if _, ok := pc.Providers[binding.Provider]; !ok {
			return nil, fmt.Errorf("task %q references unconfigured provider %q", task, binding.Provider)
		}
	}

	return &pc, nil
}

// ModelPricing holds dollars-per-million-token rates for one model.
type ModelPricing struct {
	InputPerMillion  float64 `yaml:"input_per_million"`
	OutputPerMillion float64 `yaml:"output_per_million"`
}

// PricingTable is provider -> model -> ModelPricing, the document referenced
// in spec §6.
type PricingTable map[string]map[string]ModelPricing

// LoadPricingTable reads a pricing document. A missing file is not an error;
// it returns an empty table so usage accounting degrades to zero cost with a
// logged warning per spec §4.3.
func LoadPricingTable(path string) (PricingTable, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return PricingTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pricing table %s: %w", path, err)
	}

	table := PricingTable{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse pricing table %s: %w", path, err)
	}
	return table, nil
}
