package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/recipescan/internal/config"
	"github.com/nao1215/recipescan/internal/crawler"
	"github.com/nao1215/recipescan/internal/report"
)

func recipeHTML(name string, links ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><head><script type="application/ld+json">{"@type":"Recipe","name":%q,"recipeIngredient":["rice","salt"]}</script></head><body>`, name)
	for _, l := range links {
		fmt.Fprintf(&b, `<a href="%s">link</a>`, l)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"/recipe/risotto": recipeHTML("Risotto", "/recipe/paella", "/about"),
		"/recipe/paella":  recipeHTML("Paella"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeConfig writes a config file with one static profile named "site".
func writeConfig(t *testing.T, siteURL string) string {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf(`database:
  dsn: %s
profiles:
  site:
    base_url: %s
    link_prefix: %s/recipe/
    extract_method: json-ld
    links:
      type: static
      urls:
        - %s/recipe/risotto
`, filepath.Join(dir, "data"), siteURL, siteURL, siteURL)

	path := filepath.Join(dir, config.DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

type crawlOutput struct {
	Name  string        `json:"name"`
	Stats crawler.Stats `json:"stats"`
	Error string        `json:"error"`
}

func decodeCrawl(t *testing.T, out string) []crawlOutput {
	t.Helper()

	var results []crawlOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON output %q: %v", out, err)
	}
	return results
}

func TestCollectUpdateInfo(t *testing.T) {
	t.Parallel()

	site := newSite(t)
	cfgPath := writeConfig(t, site.URL)
	logPath := filepath.Join(t.TempDir(), "recipescan.log")
	global := []string{"-c", cfgPath, "-l", "info", "-f", logPath}

	out, err := execute(t, append(global, "collect", "-p", "site", "-w", "0", "-d", "1", "--json")...)
	if err != nil {
		t.Fatalf("collect error = %v", err)
	}
	results := decodeCrawl(t, out)
	if len(results) != 1 || results[0].Name != "site" {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Stats.Stored != 2 || results[0].Stats.Failed != 0 {
		t.Errorf("collect stats = %+v, want 2 stored", results[0].Stats)
	}

	out, err = execute(t, append(global, "collect", "-p", "site", "-w", "0", "--json")...)
	if err != nil {
		t.Fatalf("second collect error = %v", err)
	}
	if s := decodeCrawl(t, out)[0].Stats; s.Skipped != 1 || s.Fetched != 0 {
		t.Errorf("second collect stats = %+v, want the stored seed skipped", s)
	}

	out, err = execute(t, append(global, "update", "-p", "site", "-w", "0", "--json")...)
	if err != nil {
		t.Fatalf("update error = %v", err)
	}
	if s := decodeCrawl(t, out)[0].Stats; s.Updated != 2 {
		t.Errorf("update stats = %+v, want 2 updated", s)
	}

	out, err = execute(t, append(global, "info", "-m", "site", "--json")...)
	if err != nil {
		t.Fatalf("info error = %v", err)
	}
	var info report.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid info output %q: %v", out, err)
	}
	if info.Collection != "site" || info.Total != 2 || info.Backend != "sqlite" {
		t.Errorf("info = %+v", info)
	}
	if len(info.Collections) != 1 || info.Collections[0].Count != 2 {
		t.Errorf("collections = %+v", info.Collections)
	}

	logData, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(logData), "collecting") {
		t.Errorf("log file should contain crawl progress, got %q", logData)
	}
}

func TestCollectLinkFile(t *testing.T) {
	t.Parallel()

	site := newSite(t)
	cfgPath := writeConfig(t, site.URL)

	linkFile := filepath.Join(t.TempDir(), "links.txt")
	links := "# seeds\n" + site.URL + "/recipe/paella\n\n" + site.URL + "/recipe/missing\n"
	if err := os.WriteFile(linkFile, []byte(links), 0600); err != nil {
		t.Fatalf("failed to write link file: %v", err)
	}

	out, err := execute(t, "-c", cfgPath, "-l", "error", "collect", "-p", "site", "-o", linkFile, "-m", "custom", "-w", "0", "--json")
	if err != nil {
		t.Fatalf("collect error = %v", err)
	}
	s := decodeCrawl(t, out)[0].Stats
	if s.Visited != 2 || s.Stored != 1 || s.Failed != 1 {
		t.Errorf("stats = %+v, want 2 visited, 1 stored and 1 failed", s)
	}

	out, err = execute(t, "-c", cfgPath, "-l", "error", "info", "-m", "custom")
	if err != nil {
		t.Fatalf("info error = %v", err)
	}
	if !strings.Contains(out, "Collection: custom") || !strings.Contains(out, "Records:    1") {
		t.Errorf("info output = %q", out)
	}
}

func TestCommandErrors(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "http://127.0.0.1:1")
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "explicit config must exist",
			args:    []string{"-c", missing, "collect", "-p", "site"},
			wantErr: config.ErrConfigNotFound,
		},
		{
			name:    "unknown profile",
			args:    []string{"-c", cfgPath, "collect", "-p", "nope"},
			wantErr: config.ErrUnknownProfile,
		},
		{
			name:    "negative depth",
			args:    []string{"-c", cfgPath, "collect", "-p", "site", "--depth=-1"},
			wantErr: config.ErrInvalidDepth,
		},
		{
			name:    "profile flag is required",
			args:    []string{"-c", cfgPath, "collect"},
			wantMsg: "required flag",
		},
		{
			name:    "info needs a collection",
			args:    []string{"-c", cfgPath, "info"},
			wantErr: errNoCollection,
		},
		{
			name:    "conflicting output flags",
			args:    []string{"-c", cfgPath, "info", "-m", "site", "--json", "--markdown"},
			wantErr: errOutputConflict,
		},
		{
			name:    "build needs a url",
			args:    []string{"-c", cfgPath, "build"},
			wantMsg: "accepts 1 arg",
		},
		{
			name:    "invalid log level",
			args:    []string{"-c", cfgPath, "-l", "loud", "info", "-m", "site"},
			wantMsg: "log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestBuildCmd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, recipeHTML("Gazpacho", "/recipes/soup/salmorejo", "/about"))
	}))
	t.Cleanup(srv.Close)

	cfgPath := writeConfig(t, srv.URL)

	out, err := execute(t, "-c", cfgPath, "-l", "error", "build", "--json", srv.URL+"/recipes/soup/gazpacho")
	if err != nil {
		t.Fatalf("build error = %v", err)
	}

	var got struct {
		BaseURL       string `json:"base_url"`
		LinkPrefix    string `json:"link_prefix"`
		ExtractMethod string `json:"extract_method"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON output %q: %v", out, err)
	}
	if got.BaseURL != srv.URL {
		t.Errorf("base_url = %q, want %q", got.BaseURL, srv.URL)
	}
	if got.ExtractMethod != "json-ld" {
		t.Errorf("extract_method = %q, want json-ld", got.ExtractMethod)
	}
	if !strings.HasPrefix(got.LinkPrefix, srv.URL+"/recipes/soup") {
		t.Errorf("link_prefix = %q, want the shared recipe path", got.LinkPrefix)
	}

	out, err = execute(t, "-c", cfgPath, "-l", "error", "build", srv.URL+"/recipes/soup/gazpacho")
	if err != nil {
		t.Fatalf("build error = %v", err)
	}
	if !strings.Contains(out, "extract_method: json-ld") {
		t.Errorf("text output should contain the YAML snippet, got %q", out)
	}
}
