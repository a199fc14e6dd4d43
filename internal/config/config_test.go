//nolint:goconst // Test file uses repeated string literals for clarity.
package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Models == nil {
		t.Error("Models map should be initialized")
	}
	if cfg.Providers == nil {
		t.Error("Providers map should be initialized")
	}
	if cfg.Options == nil {
		t.Error("Options should be initialized")
	}
}

func TestValidationDefaults(t *testing.T) {
	//nolint:govet // Field order optimized for test readability.
	tests := []struct {
		name          string
		validation    *Validation
		wantFixErrors bool
		wantLogErrors bool
	}{
		{
			name:          "nil validation defaults to on",
			validation:    nil,
			wantFixErrors: true,
			wantLogErrors: true,
		},
		{
			name:          "empty validation defaults to on",
			validation:    &Validation{},
			wantFixErrors: true,
			wantLogErrors: true,
		},
		{
			name:          "explicit false disables fixing",
			validation:    &Validation{FixErrors: boolPtr(false)},
			wantFixErrors: false,
			wantLogErrors: true,
		},
		{
			name:          "explicit false disables logging",
			validation:    &Validation{LogErrors: boolPtr(false)},
			wantFixErrors: true,
			wantLogErrors: false,
		},
		{
			name:          "explicit true keeps both on",
			validation:    &Validation{FixErrors: boolPtr(true), LogErrors: boolPtr(true)},
			wantFixErrors: true,
			wantLogErrors: true,
		},
		{
			name:          "both disabled",
			validation:    &Validation{FixErrors: boolPtr(false), LogErrors: boolPtr(false)},
			wantFixErrors: false,
			wantLogErrors: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.validation.FixErrorsEnabled(); got != tt.wantFixErrors {
				t.Errorf("FixErrorsEnabled() = %v, want %v", got, tt.wantFixErrors)
			}
			if got := tt.validation.LogErrorsEnabled(); got != tt.wantLogErrors {
				t.Errorf("LogErrorsEnabled() = %v, want %v", got, tt.wantLogErrors)
			}
		})
	}
}

func TestGetModel(t *testing.T) {
	cfg := NewConfig()
	cfg.Providers["anthropic"] = &ProviderConfig{
		ID: "anthropic",
		Models: []catwalk.Model{
			{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5"},
			{ID: "claude-3-5-haiku", Name: "Claude 3.5 Haiku"},
		},
	}

	t.Run("returns configured model", func(t *testing.T) {
		m := cfg.GetModel("anthropic", "claude-3-5-haiku")
		if m == nil {
			t.Fatal("GetModel() returned nil")
		}
		if m.Name != "Claude 3.5 Haiku" {
			t.Errorf("Name = %q, want %q", m.Name, "Claude 3.5 Haiku")
		}
	})

	t.Run("returns nil for unknown model", func(t *testing.T) {
		if m := cfg.GetModel("anthropic", "missing"); m != nil {
			t.Errorf("GetModel() = %v, want nil", m)
		}
	})

	t.Run("returns nil for unknown provider", func(t *testing.T) {
		if m := cfg.GetModel("missing", "claude-3-5-haiku"); m != nil {
			t.Errorf("GetModel() = %v, want nil", m)
		}
	})
}

func TestMergeConfig(t *testing.T) {
	t.Run("project models override global", func(t *testing.T) {
		dst := NewConfig()
		dst.Models[SelectedModelTypeLarge] = SelectedModel{Model: "global-model", Provider: "anthropic"}

		src := NewConfig()
		src.Models[SelectedModelTypeLarge] = SelectedModel{Model: "project-model", Provider: "anthropic", Think: true}

		mergeConfig(dst, src)

		got := dst.Models[SelectedModelTypeLarge]
		if got.Model != "project-model" {
			t.Errorf("Model = %q, want %q", got.Model, "project-model")
		}
		if !got.Think {
			t.Error("Think should carry over from project config")
		}
	})

	t.Run("validation fields merge individually", func(t *testing.T) {
		dst := NewConfig()
		dst.Validation = &Validation{FixErrors: boolPtr(false)}

		src := NewConfig()
		src.Validation = &Validation{LogErrors: boolPtr(false)}

		mergeConfig(dst, src)

		if dst.Validation.FixErrorsEnabled() {
			t.Error("FixErrors from global config should survive merge")
		}
		if dst.Validation.LogErrorsEnabled() {
			t.Error("LogErrors from project config should apply")
		}
	})

	t.Run("options merge", func(t *testing.T) {
		dst := NewConfig()
		src := NewConfig()
		src.Options = &Options{DataDir: "/custom/data", Debug: true}

		mergeConfig(dst, src)

		if dst.Options.DataDir != "/custom/data" {
			t.Errorf("DataDir = %q, want %q", dst.Options.DataDir, "/custom/data")
		}
		if !dst.Options.Debug {
			t.Error("Debug should be true after merge")
		}
	})
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{
		Models:    make(map[SelectedModelType]SelectedModel),
		Providers: make(map[string]*ProviderConfig),
	}

	applyDefaults(cfg)

	if cfg.Options == nil {
		t.Fatal("Options should be initialized")
	}
	if cfg.Options.DataDir == "" {
		t.Error("DataDir should have a default")
	}
	if filepath.Base(cfg.Options.DataDir) != appName {
		t.Errorf("DataDir = %q, want a %q directory", cfg.Options.DataDir, appName)
	}
}

func TestHasConfiguredProviders(t *testing.T) {
	//nolint:govet // Field order optimized for test readability.
	tests := []struct {
		name      string
		providers map[string]*ProviderConfig
		want      bool
	}{
		{
			name:      "no providers",
			providers: map[string]*ProviderConfig{},
			want:      false,
		},
		{
			name: "provider without API key",
			providers: map[string]*ProviderConfig{
				"anthropic": {ID: "anthropic"},
			},
			want: false,
		},
		{
			name: "provider with API key",
			providers: map[string]*ProviderConfig{
				"anthropic": {ID: "anthropic", APIKey: "key"},
			},
			want: true,
		},
		{
			name: "disabled provider with API key",
			providers: map[string]*ProviderConfig{
				"anthropic": {ID: "anthropic", APIKey: "key", Disable: true},
			},
			want: false,
		},
		{
			name: "one of several configured",
			providers: map[string]*ProviderConfig{
				"openai":    {ID: "openai"},
				"anthropic": {ID: "anthropic", APIKey: "key"},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Providers = tt.providers

			got := hasConfiguredProviders(cfg)
			if got != tt.want {
				t.Errorf("hasConfiguredProviders() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSaveToFileRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "parley.json")

	cfg := NewConfig()
	cfg.Models[SelectedModelTypeLarge] = SelectedModel{
		Model:    "claude-sonnet-4-5",
		Provider: "anthropic",
		Think:    true,
	}
	cfg.Providers["anthropic"] = &ProviderConfig{APIKey: "$ANTHROPIC_API_KEY"}
	cfg.Validation = &Validation{FixErrors: boolPtr(false)}

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded := NewConfig()
	if err := loadFile(path, loaded); err != nil {
		t.Fatalf("loadFile() error = %v", err)
	}

	m := loaded.Models[SelectedModelTypeLarge]
	if m.Model != "claude-sonnet-4-5" || m.Provider != "anthropic" || !m.Think {
		t.Errorf("loaded model = %+v", m)
	}
	if loaded.Providers["anthropic"].APIKey != "$ANTHROPIC_API_KEY" {
		t.Errorf("APIKey = %q, want template preserved", loaded.Providers["anthropic"].APIKey)
	}
	if loaded.Validation.FixErrorsEnabled() {
		t.Error("FixErrors should load as disabled")
	}
	if !loaded.Validation.LogErrorsEnabled() {
		t.Error("LogErrors should default to enabled")
	}
}

func TestValidateModels(t *testing.T) {
	t.Run("valid selection passes", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Providers["anthropic"] = &ProviderConfig{ID: "anthropic", APIKey: "key"}
		cfg.Models[SelectedModelTypeLarge] = SelectedModel{Model: "m", Provider: "anthropic"}

		if err := validateModels(cfg); err != nil {
			t.Errorf("validateModels() error = %v", err)
		}
	})

	t.Run("missing provider fails", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Models[SelectedModelTypeLarge] = SelectedModel{Model: "m", Provider: "nope"}

		if err := validateModels(cfg); err == nil {
			t.Error("expected error for unconfigured provider")
		}
	})

	t.Run("disabled provider fails", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Providers["anthropic"] = &ProviderConfig{ID: "anthropic", Disable: true}
		cfg.Models[SelectedModelTypeLarge] = SelectedModel{Model: "m", Provider: "anthropic"}

		err := validateModels(cfg)
		if err == nil || !strings.Contains(err.Error(), "disabled") {
			t.Errorf("validateModels() error = %v, want disabled provider error", err)
		}
	})
}
