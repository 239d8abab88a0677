package extract

import (
	"encoding/json"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/recipescan/internal/fetch"
	"github.com/nao1215/recipescan/internal/model"
)

// jsonLDSelector matches embedded structured-data blocks.
const jsonLDSelector = `script[type="application/ld+json"]`

// JSONLD extracts recipes from JSON-LD script blocks.
// Every allow-listed key of a block is copied verbatim.
type JSONLD struct {
	base
}

// Method implements Extractor.
func (e *JSONLD) Method() Method {
	return MethodJSONLD
}

// Extract implements Extractor.
// Blocks that are not well-formed JSON, or that decode to anything other
// than an object, are skipped.
func (e *JSONLD) Extract(page *fetch.Page, pageURL string) []model.Recipe {
	var records []model.Recipe

	page.Doc.Find(jsonLDSelector).Each(func(_ int, s *goquery.Selection) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &obj); err != nil || obj == nil {
			return
		}

		rec := model.Recipe(obj).Filter(e.storeFields)
		if !rec.Has(model.FieldRecipeIngredient) && e.storeFields.Contains(model.FieldRecipeIngredient) {
			if v, ok := obj[model.FieldIngredients]; ok {
				rec[model.FieldRecipeIngredient] = v
			}
		}

		if out, ok := e.finish(rec, pageURL); ok {
			records = append(records, out)
		}
	})

	return records
}

// HasJSONLD reports whether doc contains at least one JSON-LD block.
func HasJSONLD(doc *goquery.Document) bool {
	return doc.Find(jsonLDSelector).Length() > 0
}
