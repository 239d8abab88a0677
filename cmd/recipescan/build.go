package main

import (
	"fmt"

	"github.com/nao1215/recipescan/internal/profile"
	"github.com/nao1215/recipescan/internal/report"
	"github.com/spf13/cobra"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <sample-recipe-url>",
		Short: "Draft a site profile from a sample recipe page",
		Long: `Build fetches one recipe page and detects the settings needed to crawl
its site: the base URL, the link prefix shared by recipe pages and the
markup scheme the recipe is published with.

The detected profile is printed as a recipescan.yaml snippet. Review the
link prefix before using it; it is a regular expression.

Examples:
  recipescan build https://www.bonappetit.com/recipe/simple-carbonara
  recipescan build --json https://www.saveur.com/recipes/pasta`,
		Args: cobra.ExactArgs(1),
		RunE: runBuildCmd,
	}

	addOutputFlags(cmd)

	return cmd
}

func runBuildCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signalContext(cmd)
	defer stop()

	detected, err := profile.Detect(ctx, newFetcher(cfg, logger), args[0])
	if err != nil {
		return fmt.Errorf("failed to build profile: %w", err)
	}

	return report.New(format, cmd.OutOrStdout()).WriteProfile(detected, detected.SiteName())
}
