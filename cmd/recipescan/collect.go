package main

import (
	"context"
	"fmt"

	"github.com/nao1215/recipescan/internal/config"
	"github.com/nao1215/recipescan/internal/crawler"
	"github.com/nao1215/recipescan/internal/database"
	"github.com/nao1215/recipescan/internal/linkgen"
	"github.com/nao1215/recipescan/internal/report"
	"github.com/spf13/cobra"
)

// NewCollectCmd creates the collect command.
func NewCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Crawl recipe sites and store the recipes found",
		Long: `Collect visits the seed URLs of each profile, extracts the recipes they
describe and stores the new ones. Pages already stored are not extracted
again. With --depth, links matching the profile's link_prefix are followed.

Seed URLs come from the profile's links generator, or from --link-file.
Generator arguments are passed with --args:
  static  extra URLs
  pages   first page and optional last page
  dates   first date and optional last date, one seed per month
  sample  number of stored URLs to draw

Examples:
  # Crawl the seed URLs of one profile
  recipescan collect -p bonappetit

  # Crawl result pages 1 to 5 and follow recipe links one level
  recipescan collect -p gourmet -a 1 -a 5 -d 1

  # Crawl the 2016 issues month by month
  recipescan collect -p bonappetit -a 2016-01-01 -a 2016-12-01 -d 1

  # Crawl URLs from a file into a custom collection
  recipescan collect -p nyt -o links.txt -m nyt_test

  # Crawl several profiles at once
  recipescan collect -p bonappetit,saveur --parallel 2`,
		Args: cobra.NoArgs,
		RunE: runCollectCmd,
	}

	cmd.Flags().StringSliceP("profile", "p", nil,
		"Profile(s) to crawl, as defined in the configuration file")
	_ = cmd.MarkFlagRequired("profile") //nolint:errcheck // flag is registered above
	cmd.Flags().StringSliceP("args", "a", nil,
		"Arguments for the profile's link generator")
	cmd.Flags().StringP("link-file", "o", "",
		"Read seed URLs from this file instead of the link generator")
	cmd.Flags().StringP("collection", "m", "",
		"Collection to store records in (default: the profile name)")
	cmd.Flags().DurationP("wait", "w", config.DefaultPause,
		"Pause after each fetched URL")
	cmd.Flags().IntP("depth", "d", config.DefaultLinkDepth,
		"Levels of links to follow beyond the seed URLs")
	cmd.Flags().Int("parallel", config.DefaultConcurrency,
		"Number of profiles crawled at once")
	addOutputFlags(cmd)

	return cmd
}

// applyCrawlFlags copies the flags shared by collect and update onto cfg.
func applyCrawlFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	if cfg.Profiles, err = cmd.Flags().GetStringSlice("profile"); err != nil {
		return err
	}
	if cfg.LinkFile, err = cmd.Flags().GetString("link-file"); err != nil {
		return err
	}
	if cfg.Pause, err = cmd.Flags().GetDuration("wait"); err != nil {
		return err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("parallel"); err != nil {
		return err
	}

	collection, err := cmd.Flags().GetString("collection")
	if err != nil {
		return err
	}
	if collection != "" {
		cfg.Collection = collection
	}

	return nil
}

func runCollectCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCrawlFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.ProfileArgs, err = cmd.Flags().GetStringSlice("args"); err != nil {
		return err
	}
	if cfg.LinkDepth, err = cmd.Flags().GetInt("depth"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
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
		links, err := seedLinks(ctx, cfg, p, coll)
		if err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}

		c, err := newCollector(cfg, name, p, fetcher, coll, logger)
		if err != nil {
			return err
		}

		logger.Info("collecting", "profile", name, "collection", coll.Name(), "links", len(links), "depth", cfg.LinkDepth)
		jobs = append(jobs, crawler.Job{Name: name, Collector: c, Links: links})
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

// seedLinks returns the link file contents, or the profile's generated links.
func seedLinks(ctx context.Context, cfg *config.Config, p config.Profile, coll *database.Collection) ([]string, error) {
	if cfg.LinkFile != "" {
		return linkgen.ReadLinkFile(cfg.LinkFile)
	}
	return linkgen.Generate(ctx, p.Links, cfg.ProfileArgs, coll)
}
