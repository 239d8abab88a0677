package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/recipescan/internal/config"
	"github.com/nao1215/recipescan/internal/crawler"
	"github.com/nao1215/recipescan/internal/database"
	"github.com/nao1215/recipescan/internal/fetch"
	"github.com/nao1215/recipescan/internal/log"
	"github.com/nao1215/recipescan/internal/report"
	"github.com/spf13/cobra"
)

// envFileName is loaded from the working directory before the environment
// is parsed.
const envFileName = ".env"

var (
	errNoCollection   = errors.New("no collection specified (use -m or database.collection)")
	errOutputConflict = errors.New("--json and --markdown are mutually exclusive")
)

// globalString returns a persistent root flag, or "" when the command is
// used without the root command.
func globalString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return value
}

// loadConfig builds a Config from defaults, the config file and the
// environment. Command flags are applied by the caller.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ConfigFilePath = globalString(cmd, "config")

	// An explicit -c must exist; otherwise a missing file means no profiles.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	env, err := config.LoadEnv(envFileName)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(env)

	return cfg, nil
}

// setupLogger installs the default logger. The returned function closes
// the log file, if any.
func setupLogger(cmd *cobra.Command) (*slog.Logger, func(), error) {
	var (
		w       io.Writer = cmd.ErrOrStderr()
		closeFn           = func() {}
	)

	if path := globalString(cmd, "log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // User-provided log path is intentional
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() } //nolint:errcheck // nothing left to report to
	}

	level := globalString(cmd, "log-level")
	if level == "" {
		level = "INFO"
	}

	logger, err := log.NewLogger(w, level, globalString(cmd, "log-format"))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	slog.SetDefault(logger)

	return logger, closeFn, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func openStore(ctx context.Context, cfg *config.Config) (*database.RecipeDB, error) {
	rdb, err := database.Open(ctx, cfg.StoreLocation(), database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return rdb, nil
}

func newFetcher(cfg *config.Config, logger *slog.Logger) *fetch.Fetcher {
	return fetch.NewFetcher(
		&http.Client{Timeout: cfg.Timeout},
		fetch.WithMaxRetries(cfg.MaxRetries),
		fetch.WithRetryInterval(cfg.RetryInterval),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	)
}

// newCollector creates the Collector for the named profile.
func newCollector(cfg *config.Config, name string, p config.Profile, fetcher crawler.Fetcher, store crawler.Store, logger *slog.Logger) (*crawler.Collector, error) {
	method, err := p.Method()
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", name, err)
	}

	target := crawler.Target{
		Name:       p.Name(name),
		BaseURL:    p.BaseURL,
		LinkPrefix: p.LinkPrefix,
		Method:     method,
		Scope:      p.Scope,
	}

	opts := []crawler.Option{
		crawler.WithLinkDepth(cfg.LinkDepth),
		crawler.WithPause(cfg.Pause),
		crawler.WithLogger(logger),
	}
	if fields := cfg.File.Collector.StoreFields; len(fields) > 0 {
		opts = append(opts, crawler.WithStoreFields(fields))
	}
	if fields := cfg.File.Collector.RequiredFields; len(fields) > 0 {
		opts = append(opts, crawler.WithRequiredFields(fields))
	}

	return crawler.NewCollector(target, fetcher, store, opts...)
}

// addOutputFlags registers the report format flags.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output a JSON report (mutually exclusive with --markdown)")
	cmd.Flags().Bool("markdown", false,
		"Output a Markdown report (mutually exclusive with --json)")
}

// outputFormat returns the report format selected by the output flags.
func outputFormat(cmd *cobra.Command) (string, error) {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return "", err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return "", err
	}

	switch {
	case jsonOut && markdownOut:
		return "", errOutputConflict
	case jsonOut:
		return report.FormatJSON, nil
	case markdownOut:
		return report.FormatMarkdown, nil
	default:
		return report.FormatText, nil
	}
}

// jobErrors joins the errors of failed jobs.
func jobErrors(results []crawler.Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}
	return errors.Join(errs...)
}
