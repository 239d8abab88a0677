package report

import (
	"io"
	"strings"
	"time"

	"github.com/nao1215/recipescan/internal/crawler"
	"github.com/nao1215/recipescan/internal/database"
	"github.com/nao1215/recipescan/internal/profile"
)

// Writer renders command results.
type Writer interface {
	// WriteProfile renders settings detected in a sample page.
	// name is the profile name used in the YAML snippet.
	WriteProfile(d *profile.Detected, name string) error

	// WriteInfo renders collection statistics.
	WriteInfo(info *Info) error

	// WriteCrawl renders the results of a crawl batch.
	WriteCrawl(results []crawler.Result) error
}

// Format names accepted by New.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// New returns the Writer for format, defaulting to text.
func New(format string, output io.Writer) Writer {
	switch strings.ToLower(format) {
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	default:
		return NewTextWriter(output)
	}
}

// Info holds the statistics of one collection.
type Info struct {
	// Collection is the collection name.
	Collection string `json:"collection"`

	// Backend is "sqlite" or "postgres".
	Backend string `json:"backend"`

	// Total is the number of records in the collection.
	Total int `json:"total"`

	// Fields counts the records carrying each field.
	Fields []database.FieldCount `json:"fields"`

	// Collections lists every collection in the store.
	Collections []database.CollectionInfo `json:"collections,omitempty"`
}

// Percent returns the share of records carrying fc.Field.
func (i *Info) Percent(fc database.FieldCount) float64 {
	if i.Total == 0 {
		return 0
	}
	return float64(fc.Count) * 100 / float64(i.Total)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// formatTime renders t for reports, "-" when unknown.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

// methodText renders a detected method, "undetermined" when empty.
func methodText(d *profile.Detected) string {
	if d.Method == "" {
		return "undetermined"
	}
	return d.Method.String()
}

// crawlTotals sums the stats of results.
func crawlTotals(results []crawler.Result) crawler.Stats {
	var total crawler.Stats
	for _, r := range results {
		total.Visited += r.Stats.Visited
		total.Skipped += r.Stats.Skipped
		total.Fetched += r.Stats.Fetched
		total.Failed += r.Stats.Failed
		total.Extracted += r.Stats.Extracted
		total.Stored += r.Stats.Stored
		total.Updated += r.Stats.Updated
		total.LinksQueued += r.Stats.LinksQueued
	}
	return total
}

func errText(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
