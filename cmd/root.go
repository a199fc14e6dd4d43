// Package cmd provides the CLI commands for Parley.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/db"
	"github.com/parleyhq/parley/internal/debug"
	"github.com/parleyhq/parley/internal/message"
	"github.com/parleyhq/parley/internal/session"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parley",
		Short: "Chat CLI with conversation integrity checking",
		Long: `Parley is a chat CLI with an embedded wallet assistant.

Conversations use tool calls for wallet operations, and the API rejects
a history whose tool calls lost their results. Trimmed context windows
and interrupted turns leave exactly such holes behind, so parley
validates and repairs every conversation before it goes upstream.

Common commands:
  parley send "message"    Send a prompt to the current session
  parley sessions list     List conversation sessions
  parley check             Validate a session or transcript file
  parley doctor            Scan every session for integrity problems`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return enableDebug(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			debug.Disable()
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging to the data directory")

	cmd.AddCommand(newSendCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func enableDebug(cmd *cobra.Command) error {
	debugMode, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("getting debug flag: %w", err)
	}
	if !debugMode {
		return nil
	}

	logPath := filepath.Join(xdg.DataHome, "parley", "debug.log")
	if debugErr := debug.Enable(logPath); debugErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to enable debug logging: %v\n", debugErr)
		return nil
	}
	fmt.Fprintf(os.Stderr, "Debug: %s\n", logPath)
	return nil
}

// services bundles the stores every data command needs.
type services struct {
	database *db.DB
	sessions *session.Service
	messages *message.Service
}

// openServices opens the session database under the configured data
// directory. Callers must Close when done.
func openServices() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.NewConfig()
	}

	database, err := db.Open(filepath.Join(cfg.DataDir(), "parley.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &services{
		database: database,
		sessions: session.NewService(session.NewSQLiteStore(database.Conn()), nil),
		messages: message.NewService(message.NewSQLiteStore(database.Conn()), nil),
	}, nil
}

func (s *services) Close() {
	_ = s.database.Close()
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
