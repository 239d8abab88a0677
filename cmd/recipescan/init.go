package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/recipescan/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/recipescan.yaml
var configTemplate embed.FS

const templatePath = "templates/recipescan.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter recipescan.yaml",
		Long: `Init writes a configuration file with the database and collector
settings and example profiles for Bon Appetit, Gourmet, the New York Times
and Saveur.

Examples:
  # Create recipescan.yaml in the current directory
  recipescan init

  # Create the file in the XDG config directory
  recipescan init -o ~/.config/recipescan/recipescan.yaml

  # Overwrite an existing file
  recipescan init --force`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().Bool("force", false,
		"Overwrite an existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  recipescan build <sample-recipe-url>   draft a profile for a new site")
	fmt.Fprintln(out, "  recipescan collect -p bonappetit        crawl a configured profile")

	return nil
}
