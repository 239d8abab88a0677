package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for recipescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipescan",
		Short: "Collect structured recipe data from recipe sites",
		Long: `recipescan crawls recipe sites and stores the recipes they describe with
schema.org markup (JSON-LD, microdata or RDFa).

Each site is described by a profile in recipescan.yaml. Use "recipescan build"
to draft a profile from a sample recipe page, then "recipescan collect" to
crawl it. Records are stored in SQLite under the XDG data directory unless
database.dsn or RECIPESCAN_DB_DSN points somewhere else.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("log-level", "l", "INFO",
		"Log level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	cmd.PersistentFlags().StringP("log-file", "f", "",
		"Append log output to this file instead of stderr")
	cmd.PersistentFlags().String("log-format", "text",
		"Log format (text or json)")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: recipescan.yaml in current or XDG config directory)")

	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewCollectCmd())
	cmd.AddCommand(NewUpdateCmd())
	cmd.AddCommand(NewInfoCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
