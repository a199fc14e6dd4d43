package config

import (
	"os"
)

// IsFirstRun checks if this is the first time running Parley.
// Returns true if no config file exists or if no provider has
// authentication configured.
func IsFirstRun() bool {
	configPath := GlobalConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return true
	}

	cfg, err := Load()
	if err != nil {
		// If config fails to load, it's effectively first run.
		return true
	}

	return !hasConfiguredProviders(cfg)
}

// hasConfiguredProviders checks if any provider has authentication configured.
func hasConfiguredProviders(cfg *Config) bool {
	for _, p := range cfg.Providers {
		if p.Disable {
			continue
		}
		if p.APIKey != "" {
			return true
		}
	}
	return false
}

// NeedsSetup checks if the application needs initial setup.
// This is similar to IsFirstRun but can be used after partial setup.
func NeedsSetup() bool {
	cfg, err := Load()
	if err != nil {
		return true
	}

	if len(cfg.Models) == 0 {
		return true
	}

	for tier := range cfg.Models {
		provider, ok := cfg.Providers[cfg.Models[tier].Provider]
		if !ok || provider.APIKey == "" {
			return true
		}
	}

	return false
}
