package extract

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/recipescan/internal/fetch"
	"github.com/nao1215/recipescan/internal/model"
)

// Extractor extracts recipe records from a parsed page.
// Implementations return only records that passed validation; a page
// without a valid recipe yields an empty slice.
type Extractor interface {
	// Method returns the markup scheme handled by the extractor.
	Method() Method

	// Extract returns the valid records found on page. pageURL is stamped
	// into every record.
	Extract(page *fetch.Page, pageURL string) []model.Recipe
}

// Options configures an Extractor.
type Options struct {
	// StoreFields is the allow-list of fields kept in a record.
	// url and collect_time are always stamped after filtering.
	StoreFields []string

	// RequiredFields must all be present for a record to be accepted.
	RequiredFields []string

	// Scope overrides the default recipe scope selector for microdata and
	// RDFa. It is a CSS selector such as `div.recipe[itemscope]`.
	Scope string

	// Logger receives debug and rejection messages.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Now returns the collect_time stamp. If nil, time.Now is used.
	Now func() time.Time
}

// New returns the Extractor for method.
func New(method Method, opts Options) (Extractor, error) {
	m, err := ParseMethod(string(method))
	if err != nil {
		return nil, err
	}

	if err := ValidateScope(opts.Scope); err != nil {
		return nil, err
	}

	base := newBase(opts)
	switch m {
	case MethodJSONLD:
		return &JSONLD{base: base}, nil
	case MethodMicrodata:
		return newMicrodata(base, opts.Scope), nil
	case MethodRDFa:
		return newRDFa(base, opts.Scope), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// base holds the settings shared by every scheme.
type base struct {
	storeFields model.FieldSet
	required    []string
	logger      *slog.Logger
	now         func() time.Time
}

func newBase(opts Options) base {
	b := base{
		storeFields: model.NewFieldSet(opts.StoreFields...),
		required:    opts.RequiredFields,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if len(opts.StoreFields) == 0 {
		b.storeFields = model.NewFieldSet(model.DefaultStoreFields()...)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// finish filters rec to the allow-list, stamps the bookkeeping fields and
// validates it. It returns the record to keep and whether it was accepted.
func (b base) finish(rec model.Recipe, pageURL string) (model.Recipe, bool) {
	out := rec.Filter(b.storeFields)
	out[model.FieldURL] = pageURL
	out[model.FieldCollectTime] = b.now().UTC()

	b.logger.Debug("validating recipe", "url", pageURL)
	ok, missing := Validate(out, b.required)
	if !ok {
		b.logger.Warn("recipe rejected", "url", pageURL, "missing", missing)
		return nil, false
	}
	return out, true
}
