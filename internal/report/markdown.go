package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/recipescan/internal/crawler"
	"github.com/nao1215/recipescan/internal/profile"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteProfile outputs the detected settings as a table and a YAML block.
func (w *MarkdownWriter) WriteProfile(d *profile.Detected, name string) error {
	snippet, err := d.YAML(name)
	if err != nil {
		return err
	}

	md := markdown.NewMarkdown(w.output)
	md.H1("Detected Profile")
	md.PlainText("")
	md.PlainTextf("Settings detected in %s", d.SampleURL)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Setting", "Value"},
		Rows: [][]string{
			{"base_url", "`" + d.BaseURL + "`"},
			{"link_prefix", "`" + d.LinkPrefix + "`"},
			{"extract_method", methodText(d)},
		},
	})
	md.PlainText("")

	if d.Method == "" {
		md.Warningf("No schema.org/Recipe markup found in %s.", d.SampleURL)
		md.PlainText("")
	}

	md.CodeBlocks(markdown.SyntaxHighlight("yaml"), string(snippet))

	return md.Build()
}

// WriteInfo outputs collection statistics with a field coverage table.
func (w *MarkdownWriter) WriteInfo(info *Info) error {
	md := markdown.NewMarkdown(w.output)
	md.H1("Collection " + info.Collection)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Backend", info.Backend},
			{"Records", strconv.Itoa(info.Total)},
		},
	})
	md.PlainText("")

	md.H2("Fields")
	md.PlainText("")
	rows := make([][]string, len(info.Fields))
	for i, fc := range info.Fields {
		rows[i] = []string{"`" + fc.Field + "`", strconv.Itoa(fc.Count), fmt.Sprintf("%.1f%%", info.Percent(fc))}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Records", "Coverage"},
		Rows:   rows,
	})
	md.PlainText("")

	if info.Total == 0 {
		md.Note("The collection is empty.")
		md.PlainText("")
	}

	if len(info.Collections) > 0 {
		w.writeCollections(md, info)
	}

	return md.Build()
}

func (w *MarkdownWriter) writeCollections(md *markdown.Markdown, info *Info) {
	md.H2("Collections")
	md.PlainText("")

	rows := make([][]string, len(info.Collections))
	for i, c := range info.Collections {
		rows[i] = []string{c.Name, strconv.Itoa(c.Count), formatTime(c.LastCollected)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Collection", "Records", "Last collected"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(info.Collections) < 2 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Records per Collection"),
		piechart.WithShowData(true),
	)
	for _, c := range info.Collections {
		chart.LabelAndIntValue(c.Name, uint64(c.Count)) //nolint:gosec // counts are never negative
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteCrawl outputs a table of job results.
func (w *MarkdownWriter) WriteCrawl(results []crawler.Result) error {
	md := markdown.NewMarkdown(w.output)
	md.H1("Crawl Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(results)+1)
	failed := 0
	for _, r := range results {
		s := r.Stats
		status := "✅ " + errText(r.Err)
		if r.Err != nil {
			status = "❌ " + errText(r.Err)
			failed++
		}
		rows = append(rows, []string{
			r.Name,
			strconv.Itoa(s.Visited), strconv.Itoa(s.Skipped), strconv.Itoa(s.Fetched),
			strconv.Itoa(s.Failed), strconv.Itoa(s.Stored), strconv.Itoa(s.Updated), status,
		})
	}
	if len(results) > 1 {
		t := crawlTotals(results)
		rows = append(rows, []string{
			"**Total**",
			strconv.Itoa(t.Visited), strconv.Itoa(t.Skipped), strconv.Itoa(t.Fetched),
			strconv.Itoa(t.Failed), strconv.Itoa(t.Stored), strconv.Itoa(t.Updated), "",
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Profile", "Visited", "Skipped", "Fetched", "Failed", "Stored", "Updated", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	if failed > 0 {
		md.Cautionf("%d of %d crawl(s) stopped early.", failed, len(results))
		md.PlainText("")
	}

	return md.Build()
}
