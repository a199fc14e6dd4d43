package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveConfig contains only the fields we want to save to disk.
// This excludes runtime-only fields like knownProviders and resolved API keys.
type SaveConfig struct {
	Models     map[SelectedModelType]SelectedModel `json:"models,omitempty"`
	Providers  map[string]*SaveProviderConfig      `json:"providers,omitempty"`
	Validation *Validation                         `json:"validation,omitempty"`
	Options    *Options                            `json:"options,omitempty"`
}

// SaveProviderConfig is a minimal provider config for saving.
// It stores the API key template (e.g., "$ANTHROPIC_API_KEY") rather than resolved values.
type SaveProviderConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
}

// Save writes the configuration to the global config file.
func Save(cfg *Config) error {
	return SaveToFile(cfg, GlobalConfigPath())
}

// SaveToFile writes the configuration to a specific file path.
func SaveToFile(cfg *Config, path string) error {
	// Ensure the directory exists.
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Create a minimal save config.
	saveCfg := &SaveConfig{
		Models:     cfg.Models,
		Providers:  make(map[string]*SaveProviderConfig),
		Validation: cfg.Validation,
		Options:    cfg.Options,
	}

	// Only save provider API key templates.
	for id, p := range cfg.Providers {
		if p.APIKey != "" {
			saveCfg.Providers[id] = &SaveProviderConfig{
				APIKey:  p.APIKey,
				BaseURL: p.BaseURL,
			}
		}
	}

	data, err := json.MarshalIndent(saveCfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint:gosec // Restrictive permissions for security.
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
