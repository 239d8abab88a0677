package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/recipescan/internal/fetch"
	"github.com/nao1215/recipescan/internal/model"
)

// Default recipe scopes and property attributes per scheme.
const (
	MicrodataScope     = `[itemtype="http://schema.org/Recipe"], [itemtype="https://schema.org/Recipe"]`
	MicrodataAttribute = "itemprop"
	RDFaScope          = `[typeof="Recipe"]`
	RDFaAttribute      = "property"
)

// ErrInvalidScope is returned for a scope that is not a CSS selector.
var ErrInvalidScope = errors.New("invalid scope: must be a CSS selector")

// ValidateScope checks that scope parses as a CSS selector group.
// An empty scope selects the scheme default and is valid.
func ValidateScope(scope string) error {
	if scope == "" {
		return nil
	}
	if _, err := cascadia.ParseGroup(scope); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidScope, scope, err)
	}
	return nil
}

// Attributes that may carry a property value instead of element text.
var (
	imageAttributes = []string{"content", "src"}
	timeAttributes  = []string{"content"}
)

// htmlExtractor implements the rules shared by microdata and RDFa. The two
// schemes differ only in the scope selector and the attribute holding the
// property name.
type htmlExtractor struct {
	base
	method    Method
	scope     string
	attribute string
}

// Microdata extracts recipes tagged with itemprop attributes.
type Microdata struct {
	htmlExtractor
}

// RDFa extracts recipes tagged with property attributes.
type RDFa struct {
	htmlExtractor
}

func newMicrodata(b base, scope string) *Microdata {
	if scope == "" {
		scope = MicrodataScope
	}
	return &Microdata{htmlExtractor{base: b, method: MethodMicrodata, scope: scope, attribute: MicrodataAttribute}}
}

func newRDFa(b base, scope string) *RDFa {
	if scope == "" {
		scope = RDFaScope
	}
	return &RDFa{htmlExtractor{base: b, method: MethodRDFa, scope: scope, attribute: RDFaAttribute}}
}

// Method implements Extractor.
func (e *htmlExtractor) Method() Method {
	return e.method
}

// Scope returns the selector used to find recipe scopes.
func (e *htmlExtractor) Scope() string {
	return e.scope
}

// Attribute returns the name of the attribute tagging schema properties.
func (e *htmlExtractor) Attribute() string {
	return e.attribute
}

// Extract implements Extractor.
func (e *htmlExtractor) Extract(page *fetch.Page, pageURL string) []model.Recipe {
	scopes := page.Doc.Find(e.scope)
	e.logger.Debug("found recipe scopes", "count", scopes.Length(), "url", pageURL)

	var records []model.Recipe
	scopes.Each(func(_ int, scope *goquery.Selection) {
		rec := e.extractScope(page.Doc, scope)
		if out, ok := e.finish(rec, pageURL); ok {
			records = append(records, out)
		}
	})
	return records
}

// extractScope assembles one unfiltered record from a recipe scope.
func (e *htmlExtractor) extractScope(doc *goquery.Document, scope *goquery.Selection) model.Recipe {
	rec := model.NewRecipe()

	for _, prop := range model.TextFields {
		if v, ok := e.extractText(doc, scope, prop); ok {
			rec[prop] = v
		}
	}
	if v, ok := e.extractAttribute(doc, scope, model.FieldImage, imageAttributes); ok {
		rec[model.FieldImage] = v
	}
	for _, prop := range model.TimeFields {
		if v, ok := e.extractAttribute(doc, scope, prop, timeAttributes); ok {
			rec[prop] = v
		}
	}
	for _, prop := range model.ListFields {
		rec[prop] = e.extractList(doc, scope, prop)
	}

	// Older versions of the schema use "ingredients".
	if len(rec[model.FieldRecipeIngredient].([]string)) == 0 {
		rec[model.FieldRecipeIngredient] = e.extractList(doc, scope, model.FieldIngredients)
	}

	return rec
}

// property finds the elements tagged with prop, searching inside scope
// first and falling back to the whole document.
func (e *htmlExtractor) property(doc *goquery.Document, scope *goquery.Selection, prop string) *goquery.Selection {
	selector := propertySelector(e.attribute, prop)
	values := scope.Find(selector)
	if values.Length() == 0 {
		values = doc.Find(selector)
	}
	return values
}

// extractText reads a single-valued property from element text.
func (e *htmlExtractor) extractText(doc *goquery.Document, scope *goquery.Selection, prop string) (string, bool) {
	values := e.property(doc, scope, prop)
	if values.Length() != 1 {
		e.logger.Debug("unexpected number of matches", "property", prop, "expected", 1, "found", values.Length())
	}
	if values.Length() == 0 {
		return "", false
	}
	return ConcatText(values.First()), true
}

// extractAttribute reads a property carried in one of attrs, falling back
// to element text when none of them is set.
func (e *htmlExtractor) extractAttribute(doc *goquery.Document, scope *goquery.Selection, prop string, attrs []string) (string, bool) {
	values := e.property(doc, scope, prop)
	if values.Length() == 0 {
		return "", false
	}
	first := values.First()
	for _, attr := range attrs {
		if v, ok := first.Attr(attr); ok {
			return strings.TrimSpace(v), true
		}
	}
	return ConcatText(first), true
}

// extractList reads a multi-valued property.
//
// Some sites tag only the container of a list and others tag every item.
// A single match therefore contributes its element children as items,
// while several matches contribute one item each. A single match without
// element children is itself the only item.
func (e *htmlExtractor) extractList(doc *goquery.Document, scope *goquery.Selection, prop string) []string {
	values := e.property(doc, scope, prop)
	if values.Length() == 1 && values.Children().Length() > 0 {
		values = values.Children()
	}

	items := make([]string, 0, values.Length())
	values.Each(func(_ int, s *goquery.Selection) {
		if text := ConcatText(s); text != "" {
			items = append(items, text)
		}
	})
	return items
}

// propertySelector matches elements whose attr lists prop.
// Microdata allows several space-separated names in one itemprop.
func propertySelector(attr, prop string) string {
	return "[" + attr + `~="` + prop + `"]`
}

// spaceBeforePunct matches a space in front of a lone punctuation mark,
// left over from joining text fragments (e.g. "salt , pepper").
var spaceBeforePunct = regexp.MustCompile(`\s([^\p{L}\p{N}_\s]\s)`)

// ConcatText joins the text of every descendant text node of s. Each
// fragment is trimmed, blank fragments are dropped, and the rest are
// joined with single spaces. The result is NFC normalized.
func ConcatText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		collectText(n, &parts)
	}

	joined := strings.Join(parts, " ")
	joined = spaceBeforePunct.ReplaceAllString(joined, "$1")
	return norm.NFC.String(joined)
}

// collectText appends the whitespace-collapsed text fragments below n.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if frag := strings.Join(strings.Fields(n.Data), " "); frag != "" {
			*parts = append(*parts, frag)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode || skipText(c) {
			continue
		}
		collectText(c, parts)
	}
}

// skipText reports whether n holds code rather than readable text.
func skipText(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

// HasMicrodata reports whether doc contains a microdata recipe scope.
func HasMicrodata(doc *goquery.Document) bool {
	return doc.Find(MicrodataScope).Length() > 0
}

// HasRDFa reports whether doc contains an RDFa recipe scope.
func HasRDFa(doc *goquery.Document) bool {
	return doc.Find(RDFaScope).Length() > 0
}
