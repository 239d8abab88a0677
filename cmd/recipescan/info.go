package main

import (
	"github.com/nao1215/recipescan/internal/model"
	"github.com/nao1215/recipescan/internal/report"
	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show record counts and field coverage of a collection",
		Long: `Info reports how many records a collection holds, how many of them carry
each stored field, and the size of every collection in the store.

Examples:
  recipescan info -m bonappetit
  recipescan info -m gourmet --markdown > gourmet.md`,
		Args: cobra.NoArgs,
		RunE: runInfoCmd,
	}

	cmd.Flags().StringP("collection", "m", "",
		"Collection to describe (default: database.collection)")
	addOutputFlags(cmd)

	return cmd
}

func runInfoCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	collection, err := cmd.Flags().GetString("collection")
	if err != nil {
		return err
	}
	if collection != "" {
		cfg.Collection = collection
	}
	if cfg.Collection == "" {
		return errNoCollection
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	_, closeLog, err := setupLogger(cmd)
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

	coll := rdb.Collection(cfg.Collection)
	info := &report.Info{Collection: coll.Name(), Backend: rdb.Backend()}

	if info.Total, err = coll.Count(ctx); err != nil {
		return err
	}

	fields := cfg.File.Collector.StoreFields
	if len(fields) == 0 {
		fields = model.DefaultStoreFields()
	}
	if info.Fields, err = coll.FieldCounts(ctx, fields); err != nil {
		return err
	}
	if info.Collections, err = rdb.Collections(ctx); err != nil {
		return err
	}

	return report.New(format, cmd.OutOrStdout()).WriteInfo(info)
}
