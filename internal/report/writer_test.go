package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/recipescan/internal/crawler"
	"github.com/nao1215/recipescan/internal/database"
	"github.com/nao1215/recipescan/internal/extract"
	"github.com/nao1215/recipescan/internal/profile"
)

func testDetected() *profile.Detected {
	return &profile.Detected{
		SampleURL:  "https://www.example.com/recipes/food/views/soup",
		BaseURL:    "https://www.example.com",
		LinkPrefix: "https://www.example.com/recipes/food/views",
		Method:     extract.MethodMicrodata,
	}
}

func testInfo() *Info {
	return &Info{
		Collection: "recipes",
		Backend:    "sqlite",
		Total:      4,
		Fields: []database.FieldCount{
			{Field: "name", Count: 4},
			{Field: "recipeYield", Count: 1},
		},
		Collections: []database.CollectionInfo{
			{Name: "recipes", Count: 4, LastCollected: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
			{Name: "test", Count: 2},
		},
	}
}

func testResults() []crawler.Result {
	return []crawler.Result{
		{Name: "gourmet", Stats: crawler.Stats{Visited: 10, Fetched: 9, Failed: 1, Stored: 8}},
		{Name: "saveur", Stats: crawler.Stats{Visited: 3, Fetched: 1, Stored: 1}, Err: errors.New("context canceled")},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tests := []struct {
		format string
		want   any
	}{
		{format: "text", want: &TextWriter{}},
		{format: "", want: &TextWriter{}},
		{format: "Markdown", want: &MarkdownWriter{}},
		{format: "json", want: &JSONWriter{}},
	}
	for _, tt := range tests {
		w := New(tt.format, &buf)
		switch tt.want.(type) {
		case *TextWriter:
			if _, ok := w.(*TextWriter); !ok {
				t.Errorf("New(%q) = %T, want *TextWriter", tt.format, w)
			}
		case *MarkdownWriter:
			if _, ok := w.(*MarkdownWriter); !ok {
				t.Errorf("New(%q) = %T, want *MarkdownWriter", tt.format, w)
			}
		case *JSONWriter:
			if _, ok := w.(*JSONWriter); !ok {
				t.Errorf("New(%q) = %T, want *JSONWriter", tt.format, w)
			}
		}
	}
}

func TestInfoPercent(t *testing.T) {
	t.Parallel()

	info := testInfo()
	if got := info.Percent(info.Fields[1]); got != 25 {
		t.Errorf("Percent() = %v, want 25", got)
	}

	empty := &Info{}
	if got := empty.Percent(database.FieldCount{Field: "name"}); got != 0 {
		t.Errorf("Percent() on empty collection = %v, want 0", got)
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("profile", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewTextWriter(&buf).WriteProfile(testDetected(), "example"); err != nil {
			t.Fatalf("WriteProfile() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"Settings detected in https://www.example.com/recipes/food/views/soup",
			"base_url        : https://www.example.com",
			"extract_method  : microdata",
			"profiles:",
			"example:",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("undetermined method", func(t *testing.T) {
		t.Parallel()

		d := testDetected()
		d.Method = ""
		var buf bytes.Buffer
		if err := NewTextWriter(&buf).WriteProfile(d, "example"); err != nil {
			t.Fatalf("WriteProfile() error = %v", err)
		}
		if !strings.Contains(buf.String(), "undetermined") {
			t.Errorf("output should report undetermined method:\n%s", buf.String())
		}
	})

	t.Run("info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewTextWriter(&buf).WriteInfo(testInfo()); err != nil {
			t.Fatalf("WriteInfo() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"Collection: recipes (sqlite)", "Records:    4", "recipeYield", "25.0%", "2024-01-15 10:30:00"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("crawl", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewTextWriter(&buf).WriteCrawl(testResults()); err != nil {
			t.Fatalf("WriteCrawl() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"PROFILE", "gourmet", "saveur", "context canceled", "TOTAL"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("profile", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewMarkdownWriter(&buf).WriteProfile(testDetected(), "example"); err != nil {
			t.Fatalf("WriteProfile() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"# Detected Profile", "| base_url", "```yaml", "extract_method: microdata"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("info with collections chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewMarkdownWriter(&buf).WriteInfo(testInfo()); err != nil {
			t.Fatalf("WriteInfo() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"# Collection recipes", "## Fields", "`recipeYield`", "25.0%", "## Collections", "```mermaid"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("crawl", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewMarkdownWriter(&buf).WriteCrawl(testResults()); err != nil {
			t.Fatalf("WriteCrawl() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"# Crawl Summary", "gourmet", "**Total**", "[!CAUTION]"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewJSONWriter(&buf).WriteInfo(testInfo()); err != nil {
			t.Fatalf("WriteInfo() error = %v", err)
		}
		var decoded struct {
			Collection string `json:"collection"`
			Total      int    `json:"total"`
			Fields     []struct {
				Field string `json:"field"`
				Count int    `json:"count"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Collection != "recipes" || decoded.Total != 4 || len(decoded.Fields) != 2 {
			t.Errorf("decoded = %+v", decoded)
		}
	})

	t.Run("crawl", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewJSONWriter(&buf, WithPrettyPrint()).WriteCrawl(testResults()); err != nil {
			t.Fatalf("WriteCrawl() error = %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
		var decoded []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[1]["error"] != "context canceled" {
			t.Errorf("decoded = %v", decoded)
		}
		if _, ok := decoded[0]["error"]; ok {
			t.Error("successful job should have no error field")
		}
	})

	t.Run("profile", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewJSONWriter(&buf).WriteProfile(testDetected(), "example"); err != nil {
			t.Fatalf("WriteProfile() error = %v", err)
		}
		var decoded map[string]string
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded["extract_method"] != "microdata" || decoded["name"] != "example" {
			t.Errorf("decoded = %v", decoded)
		}
	})
}
