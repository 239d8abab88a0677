package config

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/recipescan/internal/extract"
)

// Link generator types.
const (
	// LinksStatic uses the listed URLs.
	LinksStatic = "static"

	// LinksPages expands a URL template over a page range.
	LinksPages = "pages"

	// LinksSample draws stored URLs at random and adds the listed URLs.
	LinksSample = "sample"

	// LinksDates expands a URL template over a range of months.
	LinksDates = "dates"
)

// Template placeholders.
const (
	// PagePlaceholder is replaced by the page number in a pages template.
	PagePlaceholder = "{page}"

	// OffsetPlaceholder is replaced by the 1-based index of the first
	// result of the page: (page-1)*page_size+1.
	OffsetPlaceholder = "{offset}"

	// DatePlaceholder is replaced by the formatted date in a dates template.
	DatePlaceholder = "{date}"
)

// DefaultDateLayout is the date layout used when a dates block sets none.
const DefaultDateLayout = "2006-01-02"

// Profile is the crawl configuration of one site.
type Profile struct {
	// DisplayName is a human-readable site name.
	DisplayName string `yaml:"display_name,omitempty"`

	// BaseURL resolves relative links, e.g. "https://www.example.com".
	BaseURL string `yaml:"base_url"`

	// LinkPrefix is a regular expression matched case-insensitively at the
	// start of each discovered link.
	LinkPrefix string `yaml:"link_prefix"`

	// ExtractMethod is one of json-ld, microdata or RDFa.
	ExtractMethod string `yaml:"extract_method"`

	// Scope overrides the default recipe scope selector of microdata and RDFa.
	Scope string `yaml:"scope,omitempty"`

	// Links describes how the seed URLs are generated.
	Links Links `yaml:"links,omitempty"`
}

// Links describes a link generator.
type Links struct {
	// Type is static, pages or sample.
	Type string `yaml:"type,omitempty"`

	// URLs are the static URLs, or the seeds added to a sample.
	URLs []string `yaml:"urls,omitempty"`

	// Template holds the placeholders expanded by the pages and dates
	// generators.
	Template string `yaml:"template,omitempty"`

	// First and Last bound the page range, inclusive.
	First int `yaml:"first,omitempty"`
	Last  int `yaml:"last,omitempty"`

	// PageSize is the number of results per page, used for {offset}.
	PageSize int `yaml:"page_size,omitempty"`

	// Layout is the Go time layout of the dates, e.g. "2006-01-02".
	Layout string `yaml:"layout,omitempty"`

	// FirstDate and LastDate bound the date range, inclusive. The range is
	// walked one month at a time.
	FirstDate string `yaml:"first_date,omitempty"`
	LastDate  string `yaml:"last_date,omitempty"`

	// Size is the number of stored URLs drawn by the sample generator.
	Size int `yaml:"size,omitempty"`
}

// Method returns the parsed extraction method.
func (p Profile) Method() (extract.Method, error) {
	return extract.ParseMethod(p.ExtractMethod)
}

// Name returns the display name, or fallback if none is set.
func (p Profile) Name(fallback string) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return fallback
}

// Validate checks the profile fields.
func (p Profile) Validate() error {
	u, err := url.Parse(p.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, p.BaseURL)
	}

	if _, err := regexp.Compile(p.LinkPrefix); err != nil || p.LinkPrefix == "" {
		return fmt.Errorf("%w: %q", ErrInvalidLinkPrefix, p.LinkPrefix)
	}

	if _, err := p.Method(); err != nil {
		return err
	}

	if err := extract.ValidateScope(p.Scope); err != nil {
		return err
	}

	return p.Links.Validate()
}

// Validate checks the generator settings.
func (l Links) Validate() error {
	switch l.Type {
	case "", LinksStatic:
		return nil
	case LinksPages:
		hasOffset := strings.Contains(l.Template, OffsetPlaceholder)
		if !strings.Contains(l.Template, PagePlaceholder) && !hasOffset {
			return fmt.Errorf("%w: pages template must contain %s or %s", ErrInvalidLinks, PagePlaceholder, OffsetPlaceholder)
		}
		if hasOffset && l.PageSize <= 0 {
			return fmt.Errorf("%w: %s needs a positive page_size", ErrInvalidLinks, OffsetPlaceholder)
		}
		if l.Last != 0 && l.Last < l.First {
			return fmt.Errorf("%w: last page %d before first page %d", ErrInvalidLinks, l.Last, l.First)
		}
		return nil
	case LinksDates:
		if !strings.Contains(l.Template, DatePlaceholder) {
			return fmt.Errorf("%w: dates template must contain %s", ErrInvalidLinks, DatePlaceholder)
		}
		first, last, err := l.DateRange(l.FirstDate, l.LastDate)
		if err != nil {
			return err
		}
		if !first.IsZero() && last.Before(first) {
			return fmt.Errorf("%w: last date %s before first date %s", ErrInvalidLinks, l.LastDate, l.FirstDate)
		}
		return nil
	case LinksSample:
		if l.Size < 0 {
			return fmt.Errorf("%w: sample size must be non-negative", ErrInvalidLinks)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidLinks, l.Type)
	}
}

// DateLayout returns the layout of the dates, or DefaultDateLayout.
func (l Links) DateLayout() string {
	if l.Layout != "" {
		return l.Layout
	}
	return DefaultDateLayout
}

// DateRange parses first and last with the block's layout. An empty last
// means first; an empty first yields zero times.
func (l Links) DateRange(first, last string) (time.Time, time.Time, error) {
	if first == "" {
		return time.Time{}, time.Time{}, nil
	}
	if last == "" {
		last = first
	}

	layout := l.DateLayout()
	from, err := time.Parse(layout, first)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: first date %q does not match layout %q", ErrInvalidLinks, first, layout)
	}
	to, err := time.Parse(layout, last)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: last date %q does not match layout %q", ErrInvalidLinks, last, layout)
	}
	return from, to, nil
}

// DatabaseSection is the database block of the config file.
type DatabaseSection struct {
	// DSN is a postgres:// URL or a SQLite directory.
	DSN string `yaml:"dsn,omitempty"`

	// Collection is the default collection name.
	Collection string `yaml:"collection,omitempty"`
}

// CollectorSection is the collector block of the config file.
type CollectorSection struct {
	// StoreFields is the allow-list of stored fields.
	StoreFields []string `yaml:"store_fields,omitempty"`

	// RequiredFields must all be present for a record to be stored.
	RequiredFields []string `yaml:"required_fields,omitempty"`
}

// File represents the structure of the recipescan.yaml configuration file.
type File struct {
	Database  DatabaseSection    `yaml:"database,omitempty"`
	Collector CollectorSection   `yaml:"collector,omitempty"`
	Profiles  map[string]Profile `yaml:"profiles,omitempty"`
}

// NewFile returns an empty File.
func NewFile() *File {
	return &File{Profiles: make(map[string]Profile)}
}

// Profile returns the named profile after validating it.
func (cf *File) Profile(name string) (Profile, error) {
	p, ok := cf.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownProfile, name, strings.Join(cf.ProfileNames(), ", "))
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return p, nil
}

// ProfileNames returns the profile names in sorted order.
func (cf *File) ProfileNames() []string {
	names := make([]string, 0, len(cf.Profiles))
	for name := range cf.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
