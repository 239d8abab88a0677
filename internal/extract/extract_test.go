package extract

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/recipescan/internal/fetch"
	"github.com/nao1215/recipescan/internal/model"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// testOptions returns extractor options with the default field sets and a
// fixed clock.
func testOptions() Options {
	return Options{
		StoreFields:    model.DefaultStoreFields(),
		RequiredFields: []string{model.FieldName, model.FieldURL},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:            func() time.Time { return fixedNow },
	}
}

// mustPage parses body into a page.
func mustPage(t *testing.T, body string) *fetch.Page {
	t.Helper()
	page, err := fetch.ParsePage("http://example.com/recipe/1", "text/html; charset=utf-8", strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	return page
}

// mustExtractor builds an extractor or fails the test.
func mustExtractor(t *testing.T, method Method, opts Options) Extractor {
	t.Helper()
	e, err := New(method, opts)
	if err != nil {
		t.Fatalf("failed to create extractor: %v", err)
	}
	return e
}

// TestParseMethod tests profile method parsing.
func TestParseMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{in: "json-ld", want: MethodJSONLD},
		{in: "JSON-LD", want: MethodJSONLD},
		{in: "microdata", want: MethodMicrodata},
		{in: "RDFa", want: MethodRDFa},
		{in: " rdfa ", want: MethodRDFa},
		{in: "opengraph", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMethod(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMethod) {
					t.Errorf("expected ErrUnknownMethod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestNew tests extractor selection.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("unknown method is an error", func(t *testing.T) {
		t.Parallel()
		if _, err := New("xpath", testOptions()); !errors.Is(err, ErrUnknownMethod) {
			t.Errorf("expected ErrUnknownMethod, got %v", err)
		}
	})

	t.Run("each method is handled by its own extractor", func(t *testing.T) {
		t.Parallel()
		for _, m := range Methods() {
			e := mustExtractor(t, m, testOptions())
			if e.Method() != m {
				t.Errorf("expected method %q, got %q", m, e.Method())
			}
		}
	})

	t.Run("custom scope overrides the default", func(t *testing.T) {
		t.Parallel()
		opts := testOptions()
		opts.Scope = "article.recipe"
		e := mustExtractor(t, MethodMicrodata, opts)
		if got := e.(*Microdata).Scope(); got != "article.recipe" {
			t.Errorf("expected custom scope, got %q", got)
		}
	})

	t.Run("scope that is not a selector is an error", func(t *testing.T) {
		t.Parallel()
		opts := testOptions()
		opts.Scope = "div[[[itemscope"
		for _, m := range []Method{MethodMicrodata, MethodRDFa} {
			if _, err := New(m, opts); !errors.Is(err, ErrInvalidScope) {
				t.Errorf("%s: expected ErrInvalidScope, got %v", m, err)
			}
		}
		if err := ValidateScope(""); err != nil {
			t.Errorf("empty scope should select the default, got %v", err)
		}
	})
}

// TestJSONLD tests JSON-LD extraction.
func TestJSONLD(t *testing.T) {
	t.Parallel()

	t.Run("keeps only allow-listed keys plus bookkeeping fields", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<html><head>
			<script type="application/ld+json">
			{"@context": "http://schema.org", "@type": "Recipe", "name": "Soup",
			 "recipeYield": "4 servings", "recipeIngredient": ["water", "salt"],
			 "nutrition": {"calories": "100"}}
			</script></head></html>`)

		records := mustExtractor(t, MethodJSONLD, testOptions()).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}

		want := []string{model.FieldCollectTime, model.FieldName, model.FieldRecipeIngredient, model.FieldRecipeYield, model.FieldURL}
		if got := records[0].Keys(); !reflect.DeepEqual(got, want) {
			t.Errorf("got keys %v, want %v", got, want)
		}
		if records[0].URL() != page.URL {
			t.Errorf("expected url %q, got %q", page.URL, records[0].URL())
		}
		if records[0][model.FieldCollectTime] != fixedNow {
			t.Errorf("expected collect_time %v, got %v", fixedNow, records[0][model.FieldCollectTime])
		}
	})

	t.Run("legacy ingredients key is copied to recipeIngredient", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<script type="application/ld+json">
			{"name": "Bread", "ingredients": ["a", "b"]}</script>`)

		records := mustExtractor(t, MethodJSONLD, testOptions()).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		got := records[0][model.FieldRecipeIngredient]
		if !reflect.DeepEqual(got, []any{"a", "b"}) {
			t.Errorf("expected [a b], got %#v", got)
		}
		if records[0].Has(model.FieldIngredients) {
			t.Error("legacy key must not be stored")
		}
	})

	t.Run("recipeIngredient wins over ingredients", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<script type="application/ld+json">
			{"name": "Bread", "recipeIngredient": ["flour"], "ingredients": ["old"]}</script>`)

		records := mustExtractor(t, MethodJSONLD, testOptions()).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if got := records[0][model.FieldRecipeIngredient]; !reflect.DeepEqual(got, []any{"flour"}) {
			t.Errorf("expected [flour], got %#v", got)
		}
	})

	t.Run("malformed and non-object blocks are skipped", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<html><head>
			<script type="application/ld+json">{not json</script>
			<script type="application/ld+json">[{"name": "in a list"}]</script>
			<script type="application/ld+json">"a string"</script>
			<script type="application/ld+json">null</script>
			<script type="application/ld+json">{"name": "Stew"}</script>
			</head></html>`)

		records := mustExtractor(t, MethodJSONLD, testOptions()).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0][model.FieldName] != "Stew" {
			t.Errorf("expected Stew, got %v", records[0][model.FieldName])
		}
	})

	t.Run("records missing required fields are rejected", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<script type="application/ld+json">{"@type": "WebSite", "url": "x"}</script>
			<script type="application/ld+json">{"name": ""}</script>`)

		records := mustExtractor(t, MethodJSONLD, testOptions()).Extract(page, page.URL)
		if len(records) != 0 {
			t.Errorf("expected no records, got %v", records)
		}
	})

	t.Run("page url overrides a url key in the block", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<script type="application/ld+json">{"name": "Pie", "url": "/other"}</script>`)

		records := mustExtractor(t, MethodJSONLD, testOptions()).Extract(page, page.URL)
		if len(records) != 1 || records[0].URL() != page.URL {
			t.Fatalf("expected page url to be stamped, got %v", records)
		}
	})
}

const microdataRecipe = `<html><body>
<div itemscope itemtype="http://schema.org/Recipe">
  <h1 itemprop="name">  Tomato
      Soup </h1>
  <span itemprop="author"><a href="/chef">Jane</a> <em>Doe</em></span>
  <img itemprop="image" src="/img/soup.jpg">
  <meta itemprop="totalTime" content="PT30M">
  <time itemprop="prepTime" content="PT10M">10 minutes</time>
  <span itemprop="cookTime">20 minutes</span>
  <span itemprop="recipeYield">Serves 4</span>
  <ul itemprop="recipeIngredient">
    <li>2 tomatoes</li>
    <li>1 onion , chopped</li>
    <li>salt</li>
  </ul>
  <ol>
    <li itemprop="recipeInstructions">Chop.</li>
    <li itemprop="recipeInstructions">Boil.</li>
  </ol>
  <a itemprop="recipeCategory" href="/c/soup">Soup</a>
</div>
</body></html>`

// TestMicrodata tests microdata extraction.
func TestMicrodata(t *testing.T) {
	t.Parallel()

	t.Run("extracts every field type", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, microdataRecipe)
		records := mustExtractor(t, MethodMicrodata, testOptions()).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		rec := records[0]

		checks := map[string]any{
			model.FieldName:               "Tomato Soup",
			model.FieldAuthor:             "Jane Doe",
			model.FieldImage:              "/img/soup.jpg",
			model.FieldTotalTime:          "PT30M",
			model.FieldPrepTime:           "PT10M",
			model.FieldCookTime:           "20 minutes",
			model.FieldRecipeYield:        "Serves 4",
			model.FieldRecipeIngredient:   []string{"2 tomatoes", "1 onion, chopped", "salt"},
			model.FieldRecipeInstructions: []string{"Chop.", "Boil."},
			model.FieldRecipeCategory:     []string{"Soup"},
		}
		for field, want := range checks {
			if got := rec[field]; !reflect.DeepEqual(got, want) {
				t.Errorf("%s: got %#v, want %#v", field, got, want)
			}
		}

		for _, field := range []string{model.FieldRecipeCuisine, model.FieldCookingMethod, model.FieldDatePublished} {
			if rec.Has(field) {
				t.Errorf("expected empty field %s to be stripped", field)
			}
		}
	})

	t.Run("container with three children yields three entries", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<div itemscope itemtype="http://schema.org/Recipe">
			<span itemprop="name">Salad</span>
			<div itemprop="recipeIngredient"><p>a</p><p>b</p><p>c</p></div>
		</div>`)

		records := mustExtractor(t, MethodMicrodata, testOptions()).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if got := records[0][model.FieldRecipeIngredient]; !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
			t.Errorf("got %#v", got)
		}
	})

	t.Run("three tagged elements yield three entries", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<div itemscope itemtype="http://schema.org/Recipe">
			<span itemprop="name">Salad</span>
			<span itemprop="recipeIngredient">a</span>
			<span itemprop="recipeIngredient"><b>b</b></span>
			<span itemprop="recipeIngredient">c</span>
		</div>`)

		records := mustExtractor(t, MethodMicrodata, testOptions()).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if got := records[0][model.FieldRecipeIngredient]; !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
			t.Errorf("got %#v", got)
		}
	})

	t.Run("single tagged element without children is one entry", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<div itemscope itemtype="https://schema.org/Recipe">
			<span itemprop="name">Toast</span>
			<span itemprop="recipeIngredient">bread</span>
		</div>`)

		records := mustExtractor(t, MethodMicrodata, testOptions()).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if got := records[0][model.FieldRecipeIngredient]; !reflect.DeepEqual(got, []string{"bread"}) {
			t.Errorf("got %#v", got)
		}
	})

	t.Run("falls back to legacy ingredients property", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<div itemscope itemtype="http://schema.org/Recipe">
			<span itemprop="name">Toast</span>
			<span itemprop="ingredients">bread</span>
			<span itemprop="ingredients">butter</span>
		</div>`)

		records := mustExtractor(t, MethodMicrodata, testOptions()).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if got := records[0][model.FieldRecipeIngredient]; !reflect.DeepEqual(got, []string{"bread", "butter"}) {
			t.Errorf("got %#v", got)
		}
	})

	t.Run("properties outside the scope are found page-wide", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<h1 itemprop="name">Outside</h1>
			<div itemscope itemtype="http://schema.org/Recipe"><p>no tags</p></div>`)

		records := mustExtractor(t, MethodMicrodata, testOptions()).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0][model.FieldName] != "Outside" {
			t.Errorf("expected page-wide fallback, got %v", records[0][model.FieldName])
		}
	})

	t.Run("scope properties win over page-wide matches", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<span itemprop="name">Site Name</span>
			<div itemscope itemtype="http://schema.org/Recipe"><span itemprop="name">Inside</span></div>`)

		records := mustExtractor(t, MethodMicrodata, testOptions()).Extract(page, page.URL)
		if len(records) != 1 || records[0][model.FieldName] != "Inside" {
			t.Fatalf("expected scoped name, got %v", records)
		}
	})

	t.Run("one record per scope", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<div itemscope itemtype="http://schema.org/Recipe"><span itemprop="name">One</span></div>
			<div itemscope itemtype="http://schema.org/Recipe"><span itemprop="name">Two</span></div>`)

		records := mustExtractor(t, MethodMicrodata, testOptions()).Extract(page, page.URL)
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0][model.FieldName] != "One" || records[1][model.FieldName] != "Two" {
			t.Errorf("unexpected names %v, %v", records[0][model.FieldName], records[1][model.FieldName])
		}
	})

	t.Run("no scope yields no records", func(t *testing.T) {
		t.Parallel()

		page := mustPage(t, `<span itemprop="name">Orphan</span>`)
		if records := mustExtractor(t, MethodMicrodata, testOptions()).Extract(page, page.URL); len(records) != 0 {
			t.Errorf("expected no records, got %v", records)
		}
	})

	t.Run("store fields limit the record", func(t *testing.T) {
		t.Parallel()

		opts := testOptions()
		opts.StoreFields = []string{model.FieldName}
		page := mustPage(t, microdataRecipe)

		records := mustExtractor(t, MethodMicrodata, opts).Extract(page, page.URL)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		want := []string{model.FieldCollectTime, model.FieldName, model.FieldURL}
		if got := records[0].Keys(); !reflect.DeepEqual(got, want) {
			t.Errorf("got keys %v, want %v", got, want)
		}
	})
}

// TestRDFa tests RDFa extraction.
func TestRDFa(t *testing.T) {
	t.Parallel()

	page := mustPage(t, `<article vocab="http://schema.org/" typeof="Recipe">
		<h1 property="name">Paella</h1>
		<meta property="datePublished" content="2016-05-01">
		<div property="recipeIngredient">rice</div>
		<div property="recipeIngredient">saffron</div>
		<span property="recipeCuisine">Spanish</span>
		<span itemprop="author">ignored microdata</span>
	</article>`)

	records := mustExtractor(t, MethodRDFa, testOptions()).Extract(page, page.URL)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]

	if rec[model.FieldName] != "Paella" {
		t.Errorf("expected Paella, got %v", rec[model.FieldName])
	}
	if rec[model.FieldDatePublished] != "2016-05-01" {
		t.Errorf("expected date, got %v", rec[model.FieldDatePublished])
	}
	if got := rec[model.FieldRecipeIngredient]; !reflect.DeepEqual(got, []string{"rice", "saffron"}) {
		t.Errorf("got %#v", got)
	}
	if got := rec[model.FieldRecipeCuisine]; !reflect.DeepEqual(got, []string{"Spanish"}) {
		t.Errorf("got %#v", got)
	}
	if rec.Has(model.FieldAuthor) {
		t.Error("itemprop must not be read by the RDFa extractor")
	}
}

// TestValidate tests the validator.
func TestValidate(t *testing.T) {
	t.Parallel()

	required := []string{model.FieldName, model.FieldRecipeIngredient, model.FieldURL}

	t.Run("strips empty fields and accepts a complete record", func(t *testing.T) {
		t.Parallel()

		rec := model.Recipe{
			model.FieldName:             "Soup",
			model.FieldRecipeIngredient: []string{"water"},
			model.FieldURL:              "http://x",
			model.FieldAuthor:           "",
			model.FieldRecipeCuisine:    []string{},
			model.FieldImage:            map[string]any{},
			model.FieldCookTime:         nil,
		}
		ok, missing := Validate(rec, required)
		if !ok || len(missing) != 0 {
			t.Fatalf("expected acceptance, got %v %v", ok, missing)
		}
		if len(rec) != 3 {
			t.Errorf("expected 3 fields after stripping, got %v", rec.Keys())
		}
	})

	t.Run("missing any required field rejects", func(t *testing.T) {
		t.Parallel()

		rec := model.Recipe{model.FieldURL: "http://x"}
		for _, f := range model.DefaultStoreFields() {
			if f != model.FieldName {
				rec[f] = "value"
			}
		}
		ok, missing := Validate(rec, required)
		if ok {
			t.Fatal("expected rejection")
		}
		if !reflect.DeepEqual(missing, []string{model.FieldName}) {
			t.Errorf("expected [name] missing, got %v", missing)
		}
	})

	t.Run("empty required field counts as missing", func(t *testing.T) {
		t.Parallel()

		rec := model.Recipe{model.FieldName: "Soup", model.FieldRecipeIngredient: []any{}, model.FieldURL: "u"}
		if ok, _ := Validate(rec, required); ok {
			t.Error("expected rejection of empty ingredient list")
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		rec := model.Recipe{model.FieldName: "Soup", model.FieldAuthor: "", model.FieldURL: "u"}
		ok1, missing1 := Validate(rec, required)
		snapshot := model.Recipe{}
		for k, v := range rec {
			snapshot[k] = v
		}
		ok2, missing2 := Validate(rec, required)

		if ok1 != ok2 || !reflect.DeepEqual(missing1, missing2) {
			t.Errorf("results differ: (%v %v) vs (%v %v)", ok1, missing1, ok2, missing2)
		}
		if !reflect.DeepEqual(rec, snapshot) {
			t.Errorf("record changed on second run: %v vs %v", rec, snapshot)
		}
	})
}

// TestConcatText tests text concatenation.
func TestConcatText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{name: "collapses whitespace", html: "<p>  a \n\t b  </p>", want: "a b"},
		{name: "joins nested text", html: "<p>1 <b>cup</b><i>flour</i></p>", want: "1 cup flour"},
		{name: "removes space before punctuation", html: "<p><span>salt</span> , <span>pepper</span></p>", want: "salt, pepper"},
		{name: "skips comments", html: "<p>a<!-- hidden -->b</p>", want: "a b"},
		{name: "skips inline script and style", html: "<p>Stir<script>track('stir')</script> well<style>.x{color:red}</style></p>", want: "Stir well"},
		{name: "normalizes to NFC", html: "<p>Cre\u0300me</p>", want: "Cr\u00e8me"},
		{name: "empty element", html: "<p>   </p>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page := mustPage(t, tt.html)
			if got := ConcatText(page.Doc.Find("p")); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
