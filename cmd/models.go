package cmd

import (
	"fmt"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/config"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models [provider-id]",
		Short: "Show selected models and available providers",
		Long: `Show the models selected for each tier and the providers they can
come from. Pass a provider id to list that provider's full catalog.

Examples:
  parley models            Selected models and provider summary
  parley models anthropic  Every model the anthropic provider offers`,
		Args: cobra.MaximumNArgs(1),
		RunE: runModels,
	}

	return cmd
}

func runModels(_ *cobra.Command, args []string) error {
	cfg, known := loadCatalog()

	if len(args) > 0 {
		return printProviderModels(cfg, known, args[0])
	}

	fmt.Println("Selected Models:")
	printSelectedModel(cfg, config.SelectedModelTypeLarge)
	printSelectedModel(cfg, config.SelectedModelTypeSmall)

	fmt.Println("\nAvailable Providers:")
	for _, p := range known {
		marker := ""
		if pc, ok := cfg.Providers[string(p.ID)]; ok {
			marker = "  [configured]"
			if pc.Disable {
				marker = "  [disabled]"
			}
		}
		fmt.Printf("  %s (%s)  %d models%s\n", p.Name, p.ID, len(p.Models), marker)
	}
	fmt.Println("\nRun 'parley models <provider-id>' to list a provider's models.")

	return nil
}

// loadCatalog loads configuration plus the provider catalog. When no provider
// is configured Load fails; the catalog is still loaded so listing works on a
// fresh install.
func loadCatalog() (*config.Config, []catwalk.Provider) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.NewConfig()
	}

	known := cfg.KnownProviders()
	if len(known) == 0 {
		loader := config.NewProviderLoader(cfg.DataDir())
		if providers, loadErr := loader.LoadAllProviders(); loadErr == nil {
			cfg.SetKnownProviders(providers)
			known = providers
		}
	}
	return cfg, known
}

func printSelectedModel(cfg *config.Config, tier config.SelectedModelType) {
	selected, ok := cfg.SelectedModelFor(tier)
	if !ok {
		fmt.Printf("  %-6s (not configured)\n", tier)
		return
	}

	think := ""
	if selected.Think {
		think = "  [thinking]"
	}
	fmt.Printf("  %-6s %s/%s%s\n", tier, selected.Provider, selected.Model, think)
}

func printProviderModels(cfg *config.Config, known []catwalk.Provider, providerID string) error {
	var found *catwalk.Provider
	for i := range known {
		if string(known[i].ID) == providerID {
			found = &known[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("provider %q not found", providerID)
	}

	fmt.Printf("Provider: %s\n", found.Name)
	fmt.Printf("ID: %s\n", found.ID)
	fmt.Printf("Type: %s\n", found.Type)
	if found.APIEndpoint != "" {
		fmt.Printf("API Endpoint: %s\n", found.APIEndpoint)
	}

	fmt.Printf("\nModels (%d):\n", len(found.Models))
	for _, model := range found.Models {
		fmt.Printf("  %s\n", model.Name)
		fmt.Printf("    ID: %s\n", model.ID)
		fmt.Printf("    Context: %d tokens\n", model.ContextWindow)
		if model.DefaultMaxTokens > 0 {
			fmt.Printf("    Max Tokens: %d\n", model.DefaultMaxTokens)
		}
		if model.CanReason {
			fmt.Println("    Reasoning: supported")
		}
		if model.CostPer1MIn > 0 || model.CostPer1MOut > 0 {
			fmt.Printf("    Cost: $%.2f / 1M in, $%.2f / 1M out\n", model.CostPer1MIn, model.CostPer1MOut)
		}
	}

	if found.DefaultLargeModelID != "" {
		fmt.Printf("\nDefault Large Model: %s\n", found.DefaultLargeModelID)
	}
	if found.DefaultSmallModelID != "" {
		fmt.Printf("Default Small Model: %s\n", found.DefaultSmallModelID)
	}

	// Point at the selection step when this provider is usable but unselected.
	if pc, ok := cfg.Providers[providerID]; ok && !pc.Disable {
		large, hasLarge := cfg.SelectedModelFor(config.SelectedModelTypeLarge)
		if !hasLarge || large.Provider != providerID {
			fmt.Printf("\nSelect a model: parley config set models.large.provider %s\n", providerID)
		}
	}

	return nil
}
