package fetch

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Page is a fetched and parsed HTML document.
type Page struct {
	// URL is the address the page was requested from.
	URL string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// ContentType is the Content-Type response header.
	ContentType string

	// Doc is the parsed document.
	Doc *goquery.Document
}

// ParsePage parses HTML read from r. contentType is used to pick the
// character encoding; pass "" to rely on <meta charset> sniffing.
func ParsePage(pageURL, contentType string, r io.Reader) (*Page, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	return &Page{
		URL:         pageURL,
		ContentType: contentType,
		Doc:         doc,
	}, nil
}
