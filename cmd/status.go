package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/config"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show model, provider, and validation configuration",
		Long: `Display the current Parley status including:
  - Current working directory
  - Configured providers and models
  - Conversation validation settings
  - Data and config file locations`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(_ *cobra.Command, _ []string) error {
	// Check if first run
	if config.IsFirstRun() {
		fmt.Println("Status: Not configured")
		fmt.Println("")
		fmt.Println("Set an API key to get started:")
		fmt.Println("  parley config set providers.anthropic.api_key '$ANTHROPIC_API_KEY'")
		fmt.Println("  parley send \"hello\"")
		return nil
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Get working directory
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	// Print header
	fmt.Println("Parley Status")
	fmt.Println(strings.Repeat("─", 40))
	fmt.Println()

	// Working directory
	fmt.Printf("Working Directory: %s\n", cwd)
	fmt.Println()

	// Model configuration
	fmt.Println("Model Configuration:")
	printModelConfig(cfg, config.SelectedModelTypeLarge, "  Large")
	printModelConfig(cfg, config.SelectedModelTypeSmall, "  Small")
	fmt.Println()

	// Validation settings
	fmt.Println("Validation:")
	fmt.Printf("  Fix errors: %s\n", onOff(cfg.Validation.FixErrorsEnabled()))
	fmt.Printf("  Log errors: %s\n", onOff(cfg.Validation.LogErrorsEnabled()))
	fmt.Println()

	// Provider status
	fmt.Println("Providers:")
	if len(cfg.Providers) == 0 {
		fmt.Println("  No providers configured")
	} else {
		for id, provider := range cfg.Providers {
			printProviderStatus(id, provider)
		}
	}
	fmt.Println()

	// Data and config locations
	printDataStatus(cfg)
	fmt.Printf("Config File: %s\n", config.GlobalConfigPath())

	return nil
}

func printModelConfig(cfg *config.Config, tier config.SelectedModelType, label string) {
	model, ok := cfg.Models[tier]
	if !ok {
		fmt.Printf("%s: (not configured)\n", label)
		return
	}

	think := ""
	if model.Think {
		think = " [thinking]"
	}
	fmt.Printf("%s: %s (%s)%s\n", label, model.Model, model.Provider, think)
}

func printProviderStatus(id string, provider *config.ProviderConfig) {
	name := provider.Name
	if name == "" {
		name = id
	}

	status := "API Key"
	if provider.APIKey == "" {
		status = "Not configured"
	}
	if provider.Disable {
		status = "Disabled"
	}

	fmt.Printf("  %s: %s\n", name, status)
}

func printDataStatus(cfg *config.Config) {
	fmt.Printf("Data Directory: %s\n", cfg.DataDir())

	dbPath := filepath.Join(cfg.DataDir(), "parley.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("Database: (not created yet)")
	} else {
		fmt.Printf("Database: %s\n", dbPath)
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
