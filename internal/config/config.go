// Package config provides configuration management for the Parley CLI.
package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
	"github.com/tidwall/sjson"
)

const appName = "parley"

// SelectedModelType represents the tier of model (large or small).
type SelectedModelType string

// Model type constants.
const (
	SelectedModelTypeLarge SelectedModelType = "large"
	SelectedModelTypeSmall SelectedModelType = "small"
)

// SelectedModel represents a selected model configuration for a tier.
type SelectedModel struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`
	TopK            *int64   `json:"top_k,omitempty"`
	Model           string   `json:"model"`
	Provider        string   `json:"provider"`
	ReasoningEffort string   `json:"reasoning_effort,omitempty"`
	MaxTokens       int64    `json:"max_tokens,omitempty"`
	Think           bool     `json:"think,omitempty"`
}

// ProviderConfig holds provider authentication and settings.
//
//nolint:govet // Field order is intentional for JSON readability.
type ProviderConfig struct {
	ExtraHeaders map[string]string `json:"extra_headers,omitempty"`
	Models       []catwalk.Model   `json:"models,omitempty"`
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name,omitempty"`
	Type         catwalk.Type      `json:"type,omitempty"`
	BaseURL      string            `json:"base_url,omitempty"`
	APIKey       string            `json:"api_key,omitempty"`
	Disable      bool              `json:"disable,omitempty"`
}

// Validation controls conversation integrity checking before each request.
// Both knobs default to on; pointers distinguish "unset" from "false".
type Validation struct {
	FixErrors *bool `json:"fix_errors,omitempty"`
	LogErrors *bool `json:"log_errors,omitempty"`
}

// FixErrorsEnabled reports whether unresolved tool calls are removed
// before sending a conversation upstream.
func (v *Validation) FixErrorsEnabled() bool {
	if v == nil || v.FixErrors == nil {
		return true
	}
	return *v.FixErrors
}

// LogErrorsEnabled reports whether validation findings are logged.
func (v *Validation) LogErrorsEnabled() bool {
	if v == nil || v.LogErrors == nil {
		return true
	}
	return *v.LogErrors
}

// Config is the top-level configuration structure.
type Config struct {
	Models         map[SelectedModelType]SelectedModel `json:"models"`
	Providers      map[string]*ProviderConfig          `json:"providers"`
	Validation     *Validation                         `json:"validation,omitempty"`
	Options        *Options                            `json:"options,omitempty"`
	knownProviders []catwalk.Provider
}

// Options holds optional configuration settings.
type Options struct {
	DataDir string `json:"data_directory,omitempty"`
	Debug   bool   `json:"debug,omitempty"`
}

// NewConfig creates a new Config with initialized maps.
func NewConfig() *Config {
	return &Config{
		Models:    make(map[SelectedModelType]SelectedModel),
		Providers: make(map[string]*ProviderConfig),
		Options:   &Options{},
	}
}

// GetModel returns the model configuration for the given provider and model IDs.
func (c *Config) GetModel(providerID, modelID string) *catwalk.Model {
	provider, ok := c.Providers[providerID]
	if !ok {
		return nil
	}
	for i := range provider.Models {
		if provider.Models[i].ID == modelID {
			return &provider.Models[i]
		}
	}
	return nil
}

// SelectedModelFor returns the selected model for a tier, if configured.
func (c *Config) SelectedModelFor(tier SelectedModelType) (SelectedModel, bool) {
	m, ok := c.Models[tier]
	return m, ok
}

// KnownProviders returns the list of known providers from catwalk.
func (c *Config) KnownProviders() []catwalk.Provider {
	return c.knownProviders
}

// SetKnownProviders sets the list of known providers.
func (c *Config) SetKnownProviders(providers []catwalk.Provider) {
	c.knownProviders = providers
}

// SetConfigField updates a single field in the config file using JSON path notation.
// This uses sjson for surgical updates - only the specified field is modified.
func (c *Config) SetConfigField(key string, value any) error {
	configPath := GlobalConfigPath()

	//nolint:gosec // G304: configPath is from trusted GlobalConfigPath(), not user input.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	newData, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("setting config field %q: %w", key, err)
	}

	//nolint:gosec // 0o600 is intentionally restrictive for security.
	if err := os.WriteFile(configPath, []byte(newData), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
