package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/recipescan/internal/crawler"
	"github.com/nao1215/recipescan/internal/profile"
)

// TextWriter outputs human-readable text for the terminal.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// WriteProfile outputs the detected settings followed by a YAML snippet.
func (w *TextWriter) WriteProfile(d *profile.Detected, name string) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Settings detected in %s\n", d.SampleURL)
	fmt.Fprintf(&sb, "%-16s: %s\n", "base_url", d.BaseURL)
	fmt.Fprintf(&sb, "%-16s: %s\n", "link_prefix", d.LinkPrefix)
	fmt.Fprintf(&sb, "%-16s: %s\n", "extract_method", methodText(d))

	snippet, err := d.YAML(name)
	if err != nil {
		return err
	}
	sb.WriteString("\n")
	sb.Write(snippet)

	_, err = io.WriteString(w.output, sb.String())
	return err
}

// WriteInfo outputs the record count and per-field coverage.
func (w *TextWriter) WriteInfo(info *Info) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Collection: %s (%s)\n", info.Collection, info.Backend)
	fmt.Fprintf(&sb, "Records:    %d\n\n", info.Total)

	for _, fc := range info.Fields {
		fmt.Fprintf(&sb, "%-30s\t%d\t%5.1f%%\n", fc.Field, fc.Count, info.Percent(fc))
	}

	if len(info.Collections) > 0 {
		sb.WriteString("\nCollections:\n")
		for _, c := range info.Collections {
			fmt.Fprintf(&sb, "  %-28s\t%d\t%s\n", c.Name, c.Count, formatTime(c.LastCollected))
		}
	}

	_, err := io.WriteString(w.output, sb.String())
	return err
}

// WriteCrawl outputs one line per job and the totals.
func (w *TextWriter) WriteCrawl(results []crawler.Result) error {
	var sb strings.Builder

	line := "%-20s %8s %8s %8s %8s %8s %8s  %s\n"
	fmt.Fprintf(&sb, line, "PROFILE", "VISITED", "SKIPPED", "FETCHED", "FAILED", "STORED", "UPDATED", "STATUS")
	for _, r := range results {
		s := r.Stats
		fmt.Fprintf(&sb, line, r.Name,
			fmt.Sprint(s.Visited), fmt.Sprint(s.Skipped), fmt.Sprint(s.Fetched),
			fmt.Sprint(s.Failed), fmt.Sprint(s.Stored), fmt.Sprint(s.Updated), errText(r.Err))
	}

	if len(results) > 1 {
		t := crawlTotals(results)
		fmt.Fprintf(&sb, line, "TOTAL",
			fmt.Sprint(t.Visited), fmt.Sprint(t.Skipped), fmt.Sprint(t.Fetched),
			fmt.Sprint(t.Failed), fmt.Sprint(t.Stored), fmt.Sprint(t.Updated), "")
	}

	_, err := io.WriteString(w.output, sb.String())
	return err
}
