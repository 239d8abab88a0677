package profile

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/recipescan/internal/config"
	"github.com/nao1215/recipescan/internal/extract"
	"github.com/nao1215/recipescan/internal/fetch"
)

// Fetcher retrieves and parses a page. *fetch.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*fetch.Page, error)
}

// Detected holds the settings guessed from a sample page.
type Detected struct {
	// SampleURL is the page the settings were detected in.
	SampleURL string

	// BaseURL is scheme://host of the sample URL.
	BaseURL string

	// LinkPrefix is the longest path shared by the sample and its links.
	LinkPrefix string

	// Method is the detected markup scheme, empty if none was found.
	Method extract.Method
}

// Detect fetches sampleURL and guesses the profile settings of its site.
func Detect(ctx context.Context, fetcher Fetcher, sampleURL string) (*Detected, error) {
	sample, err := url.Parse(sampleURL)
	if err != nil || sample.Scheme == "" || sample.Host == "" {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidBaseURL, sampleURL)
	}

	page, err := fetcher.Fetch(ctx, sampleURL)
	if err != nil {
		return nil, err
	}

	base := &url.URL{Scheme: sample.Scheme, Host: sample.Host}

	return &Detected{
		SampleURL:  sampleURL,
		BaseURL:    base.String(),
		LinkPrefix: linkPrefix(page.Doc, sample, base),
		Method:     DetectMethod(page.Doc),
	}, nil
}

// DetectMethod returns the first scheme found in doc, checking JSON-LD,
// then microdata, then RDFa. It returns "" if none is present.
func DetectMethod(doc *goquery.Document) extract.Method {
	switch {
	case extract.HasJSONLD(doc):
		return extract.MethodJSONLD
	case extract.HasMicrodata(doc):
		return extract.MethodMicrodata
	case extract.HasRDFa(doc):
		return extract.MethodRDFa
	default:
		return ""
	}
}

// linkPrefix finds, over the same-host links of doc, the longest run of
// leading path segments shared with the sample path, resolved against base.
// The last character of the sample path is dropped first so the sample page
// itself does not count as a shared segment.
func linkPrefix(doc *goquery.Document, sample, base *url.URL) string {
	samplePath := sample.Path
	if samplePath != "" {
		samplePath = samplePath[:len(samplePath)-1]
	}
	sampleSegments := strings.Split(samplePath, "/")

	prefixes := make(map[string]struct{})
	doc.Find("[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		if link.Host != "" && link.Host != sample.Host {
			return
		}
		prefixes[commonPrefix(sampleSegments, strings.Split(link.Path, "/"))] = struct{}{}
	})

	if len(prefixes) == 0 {
		return base.String()
	}

	candidates := make([]string, 0, len(prefixes))
	for p := range prefixes {
		candidates = append(candidates, p)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) > len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})

	ref, err := url.Parse(candidates[0])
	if err != nil {
		return base.String()
	}
	return base.ResolveReference(ref).String()
}

// commonPrefix joins the leading segments a and b share.
func commonPrefix(a, b []string) string {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return strings.Join(a[:n], "/")
}

// Profile converts the detected settings to a config profile.
func (d *Detected) Profile() config.Profile {
	return config.Profile{
		BaseURL:       d.BaseURL,
		LinkPrefix:    d.LinkPrefix,
		ExtractMethod: string(d.Method),
		Links: config.Links{
			Type: config.LinksStatic,
			URLs: []string{d.SampleURL},
		},
	}
}

// YAML renders the settings as a recipescan.yaml profiles block named name.
func (d *Detected) YAML(name string) ([]byte, error) {
	doc := struct {
		Profiles map[string]config.Profile `yaml:"profiles"`
	}{
		Profiles: map[string]config.Profile{name: d.Profile()},
	}
	return yaml.Marshal(doc)
}

// SiteName derives a profile name from the host, e.g. "www.example.com"
// becomes "example".
func (d *Detected) SiteName() string {
	u, err := url.Parse(d.BaseURL)
	if err != nil {
		return "site"
	}
	parts := strings.Split(u.Hostname(), ".")
	if len(parts) > 0 && parts[0] == "www" {
		parts = parts[1:]
	}
	switch len(parts) {
	case 0:
		return "site"
	case 1:
		return parts[0]
	default:
		return parts[len(parts)-2]
	}
}
