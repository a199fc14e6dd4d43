package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/parleyhq/parley/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write configuration values",
		Long: `Read and write fields of the global configuration file using JSON
path notation. Writes touch only the named field.

Examples:
  parley config path
  parley config get models.large.model
  parley config set models.large.think true
  parley config set validation.fix_errors false
  parley config set providers.anthropic.api_key '$ANTHROPIC_API_KEY'`,
	}

	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the global config file path",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Println(config.GlobalConfigPath())
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	}
}

func runConfigGet(_ *cobra.Command, args []string) error {
	path := config.GlobalConfigPath()
	//nolint:gosec // G304: Path is from trusted GlobalConfigPath(), not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no config file at %s", path)
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	result := gjson.GetBytes(data, args[0])
	if !result.Exists() {
		return fmt.Errorf("key %q not set", args[0])
	}
	fmt.Println(result.Raw)
	return nil
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write one configuration value",
		Long: `Write one field of the global config file. Values parse as JSON
types: true/false become booleans, numbers stay numbers, everything
else is a string.`,
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	}
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		cfg = config.NewConfig()
	}

	if err := cfg.SetConfigField(key, coerceValue(raw)); err != nil {
		return err
	}

	fmt.Printf("Set %s = %s\n", key, raw)
	return nil
}

// coerceValue maps a CLI string onto the JSON type the config expects.
func coerceValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
