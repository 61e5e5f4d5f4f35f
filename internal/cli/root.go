package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "partyup",
		Short: "Party game lobby server",
		Long: `partyup runs the party game lobby web server.

Players register with just a display name, create games, and invite
friends with time-limited links. Storage can be in-memory, Redis or
PostgreSQL depending on configuration.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file (env: PARTYUP_CONFIG)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
