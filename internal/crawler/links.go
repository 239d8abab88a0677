package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkFinder discovers links worth following on a page.
type LinkFinder struct {
	base   *url.URL
	prefix *regexp.Regexp
}

// NewLinkFinder creates a LinkFinder. Relative links are resolved against
// baseURL; a link is kept when linkPrefix, a regular expression, matches at
// its start ignoring case.
func NewLinkFinder(baseURL, linkPrefix string) (*LinkFinder, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	prefix, err := regexp.Compile(`(?i)^(?:` + linkPrefix + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid link prefix %q: %w", linkPrefix, err)
	}

	return &LinkFinder{base: base, prefix: prefix}, nil
}

// Find returns the matching links of doc in document order, without
// duplicates and without query strings or fragments.
func (lf *LinkFinder) Find(doc *goquery.Document) []string {
	var links []string
	seen := make(map[string]struct{})

	doc.Find("[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, ok := lf.resolve(href)
		if !ok {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

// Match reports whether link starts with the link prefix.
func (lf *LinkFinder) Match(link string) bool {
	return lf.prefix.MatchString(link)
}

// resolve strips the query and fragment, resolves href against the base URL and checks
// the link prefix.
func (lf *LinkFinder) resolve(href string) (string, bool) {
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[:i]
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	ref.Fragment, ref.RawFragment = "", ""

	link := lf.base.ResolveReference(ref).String()
	if !lf.Match(link) {
		return "", false
	}
	return link, true
}
