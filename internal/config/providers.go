// Package config provides provider loading and caching functionality.
//
//nolint:gocritic // rangeValCopy is acceptable for catwalk types.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
	"github.com/charmbracelet/catwalk/pkg/embedded"
)

const defaultCatwalkURL = "https://catwalk.charm.sh"

// ProviderLoader loads provider metadata from catwalk with offline fallback.
type ProviderLoader struct {
	catwalkURL     string
	cachePath      string
	disableUpdates bool
}

// NewProviderLoader creates a new ProviderLoader caching under dataDir.
func NewProviderLoader(dataDir string) *ProviderLoader {
	return &ProviderLoader{
		catwalkURL:     defaultCatwalkURL,
		cachePath:      filepath.Join(dataDir, "providers.json"),
		disableUpdates: os.Getenv("PARLEY_DISABLE_PROVIDER_AUTO_UPDATE") == "1",
	}
}

// SetCatwalkURL sets a custom catwalk URL.
func (pl *ProviderLoader) SetCatwalkURL(url string) {
	pl.catwalkURL = url
}

// DisableAutoUpdates disables automatic provider updates.
func (pl *ProviderLoader) DisableAutoUpdates() {
	pl.disableUpdates = true
}

// LoadAllProviders returns the provider list.
// Resolution order:
// 1. Fetch from the catwalk API (unless auto-updates are disabled)
// 2. Fall back to the on-disk cache
// 3. Fall back to the embedded snapshot.
func (pl *ProviderLoader) LoadAllProviders() ([]catwalk.Provider, error) {
	if pl.disableUpdates {
		return pl.loadCachedOrEmbedded(), nil
	}

	client := catwalk.NewWithURL(pl.catwalkURL)
	providers, err := client.GetProviders()
	if err == nil && len(providers) > 0 {
		// Cache write failure is non-fatal.
		_ = saveProvidersCache(pl.cachePath, providers) //nolint:errcheck // intentionally ignoring cache write error
		return providers, nil
	}

	return pl.loadCachedOrEmbedded(), nil
}

// loadCachedOrEmbedded loads providers from cache or falls back to the
// snapshot compiled into the binary.
func (pl *ProviderLoader) loadCachedOrEmbedded() []catwalk.Provider {
	if providers, err := loadProvidersCache(pl.cachePath); err == nil && len(providers) > 0 {
		return providers
	}
	return embedded.GetAll()
}

// UpdateProviders refreshes the provider cache from the given source.
// Source can be empty (catwalk API), "embedded", an HTTP(S) URL, or a
// local file path.
func (pl *ProviderLoader) UpdateProviders(source string) error {
	var providers []catwalk.Provider

	switch {
	case source == "":
		client := catwalk.NewWithURL(pl.catwalkURL)
		fetched, err := client.GetProviders()
		if err != nil {
			return fmt.Errorf("fetching providers: %w", err)
		}
		providers = fetched
	case source == "embedded":
		providers = embedded.GetAll()
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		client := catwalk.NewWithURL(source)
		fetched, err := client.GetProviders()
		if err != nil {
			return fmt.Errorf("fetching providers from %q: %w", source, err)
		}
		providers = fetched
	default:
		//nolint:gosec // G304: Source is an operator-supplied path.
		data, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("reading providers file: %w", err)
		}
		if err := json.Unmarshal(data, &providers); err != nil {
			return fmt.Errorf("parsing providers file: %w", err)
		}
	}

	if len(providers) == 0 {
		return fmt.Errorf("source %q contained no providers", source)
	}

	return saveProvidersCache(pl.cachePath, providers)
}

func loadProvidersCache(path string) ([]catwalk.Provider, error) {
	//nolint:gosec // G304: Path is derived from the configured data directory.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var providers []catwalk.Provider
	if err := json.Unmarshal(data, &providers); err != nil {
		return nil, fmt.Errorf("parsing providers cache: %w", err)
	}
	return providers, nil
}

func saveProvidersCache(path string, providers []catwalk.Provider) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(providers, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling providers: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint:gosec // Restrictive permissions.
		return fmt.Errorf("writing providers cache: %w", err)
	}

	return nil
}
