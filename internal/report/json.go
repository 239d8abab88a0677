package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/recipescan/internal/crawler"
	"github.com/nao1215/recipescan/internal/profile"
)

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type jsonProfile struct {
	Name          string `json:"name"`
	SampleURL     string `json:"sample_url"`
	BaseURL       string `json:"base_url"`
	LinkPrefix    string `json:"link_prefix"`
	ExtractMethod string `json:"extract_method,omitempty"`
}

type jsonResult struct {
	Name  string        `json:"name"`
	Stats crawler.Stats `json:"stats"`
	Error string        `json:"error,omitempty"`
}

// WriteProfile outputs the detected settings.
func (w *JSONWriter) WriteProfile(d *profile.Detected, name string) error {
	return w.encode(jsonProfile{
		Name:          name,
		SampleURL:     d.SampleURL,
		BaseURL:       d.BaseURL,
		LinkPrefix:    d.LinkPrefix,
		ExtractMethod: string(d.Method),
	})
}

// WriteInfo outputs collection statistics.
func (w *JSONWriter) WriteInfo(info *Info) error {
	return w.encode(info)
}

// WriteCrawl outputs the job results.
func (w *JSONWriter) WriteCrawl(results []crawler.Result) error {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{Name: r.Name, Stats: r.Stats}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return w.encode(out)
}

func (w *JSONWriter) encode(v any) error {
	enc := json.NewEncoder(w.output)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	return enc.Encode(v)
}
