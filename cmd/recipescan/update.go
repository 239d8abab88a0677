package main

import (
	"fmt"

	"github.com/nao1215/recipescan/internal/config"
	"github.com/nao1215/recipescan/internal/crawler"
	"github.com/nao1215/recipescan/internal/linkgen"
	"github.com/nao1215/recipescan/internal/report"
	"github.com/spf13/cobra"
)

// NewUpdateCmd creates the update command.
func NewUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Re-extract stored recipes and update their records",
		Long: `Update fetches pages that are already stored and merges the freshly
extracted fields into the stored records. URLs without a stored record are
skipped. By default every stored URL of the collection is refreshed.

By default extracted fields overwrite the stored ones. With --preserve only
fields missing from the stored record are added. update_time is always set.

Examples:
  # Refresh every record of a profile
  recipescan update -p bonappetit

  # Add newly supported fields without touching existing values
  recipescan update -p gourmet --preserve -o links.txt`,
		Args: cobra.NoArgs,
		RunE: runUpdateCmd,
	}

	cmd.Flags().StringSliceP("profile", "p", nil,
		"Profile(s) to update, as defined in the configuration file")
	_ = cmd.MarkFlagRequired("profile") //nolint:errcheck // flag is registered above
	cmd.Flags().StringP("link-file", "o", "",
		"Update only the URLs in this file")
	cmd.Flags().StringP("collection", "m", "",
		"Collection holding the records (default: the profile name)")
	cmd.Flags().DurationP("wait", "w", config.DefaultPause,
		"Pause after each fetched URL")
	cmd.Flags().Bool("preserve", false,
		"Only add fields the stored record lacks")
	cmd.Flags().Int("parallel", config.DefaultConcurrency,
		"Number of profiles updated at once")
	addOutputFlags(cmd)

	return cmd
}

func runUpdateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCrawlFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	preserve, err := cmd.Flags().GetBool("preserve")
	if err != nil {
		return err
	}
	mode := crawler.Overwrite
	if preserve {
		mode = crawler.Preserve
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

	rdb, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }() //nolint:errcheck // best effort on exit

	fetcher := newFetcher(cfg, logger)

	jobs := make([]crawler.Job, 0, len(cfg.Profiles))
	for _, name := range cfg.Profiles {
		p, err := cfg.File.Profile(name)
		if err != nil {
			return err
		}

		coll := rdb.Collection(cfg.CollectionFor(name))

		var links []string
		if cfg.LinkFile != "" {
			links, err = linkgen.ReadLinkFile(cfg.LinkFile)
		} else {
			links, err = coll.URLs(ctx)
		}
		if err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}

		c, err := newCollector(cfg, name, p, fetcher, coll, logger)
		if err != nil {
			return err
		}

		logger.Info("updating", "profile", name, "collection", coll.Name(), "links", len(links), "mode", mode)
		jobs = append(jobs, crawler.Job{Name: name, Collector: c, Links: links, Mode: mode})
	}

	results, err := crawler.RunBatch(ctx, jobs, cfg.Concurrency, logger)
	if werr := report.New(format, cmd.OutOrStdout()).WriteCrawl(results); werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	return jobErrors(results)
}
