package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/recipescan/internal/extract"
	"github.com/nao1215/recipescan/internal/fetch"
	"github.com/nao1215/recipescan/internal/model"
)

var (
	// ErrInvalidDepth is returned when the link depth is negative.
	ErrInvalidDepth = errors.New("link depth must not be negative")

	// ErrInvalidPause is returned when the pause is negative.
	ErrInvalidPause = errors.New("pause must not be negative")
)

// Fetcher retrieves and parses a page. *fetch.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*fetch.Page, error)
}

// Target describes the site a Collector works on.
type Target struct {
	// Name identifies the target in logs.
	Name string

	// BaseURL resolves relative links.
	BaseURL string

	// LinkPrefix is the case-insensitive regular expression that follow-up
	// links must match at their start.
	LinkPrefix string

	// Method is the markup scheme recipes are extracted with.
	Method extract.Method

	// Scope overrides the default recipe scope selector of HTML methods.
	Scope string
}

// Collector crawls a site sequentially.
type Collector struct {
	target    Target
	fetcher   Fetcher
	store     Store
	extractor extract.Extractor
	links     *LinkFinder

	// linkDepth is the number of link levels followed beyond the seeds.
	linkDepth int

	// pause is the delay after each fetched URL.
	pause time.Duration

	storeFields    []string
	requiredFields []string
	logger         *slog.Logger
	now            func() time.Time

	// mu protects state.
	mu    sync.Mutex
	state State
}

// State is a snapshot of the crawl position.
type State struct {
	// Depth is the remaining link depth of the list being processed.
	Depth int

	// Current is the number of URLs in the list being processed.
	Current int

	// Queued is the number of links queued for the next level.
	Queued int

	// Fetched is the number of pages retrieved so far.
	Fetched int

	// Stored is the number of records written so far.
	Stored int
}

// Stats summarizes a crawl or update run.
type Stats struct {
	// Visited is the number of URLs taken from the lists.
	Visited int `json:"visited"`

	// Skipped is the number of URLs not processed because they were
	// already stored (collect) or not stored (update).
	Skipped int `json:"skipped"`

	// Fetched is the number of pages retrieved.
	Fetched int `json:"fetched"`

	// Failed is the number of URLs whose processing failed.
	Failed int `json:"failed"`

	// Extracted is the number of accepted records.
	Extracted int `json:"extracted"`

	// Stored is the number of records inserted.
	Stored int `json:"stored"`

	// Updated is the number of records updated.
	Updated int `json:"updated"`

	// LinksQueued is the number of follow-up links discovered.
	LinksQueued int `json:"links_queued"`
}

// Option configures a Collector.
type Option func(*Collector)

// WithLinkDepth sets how many levels of links to follow.
// 0 means only the seed URLs are visited.
func WithLinkDepth(depth int) Option {
	return func(c *Collector) {
		c.linkDepth = depth
	}
}

// WithPause sets the delay after each fetched URL.
func WithPause(d time.Duration) Option {
	return func(c *Collector) {
		c.pause = d
	}
}

// WithStoreFields sets the allow-list of stored fields.
func WithStoreFields(fields []string) Option {
	return func(c *Collector) {
		c.storeFields = fields
	}
}

// WithRequiredFields sets the fields a record must carry to be stored.
func WithRequiredFields(fields []string) Option {
	return func(c *Collector) {
		c.requiredFields = fields
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the function used for collect_time and update_time.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCollector creates a Collector for target.
func NewCollector(target Target, fetcher Fetcher, store Store, opts ...Option) (*Collector, error) {
	c := &Collector{
		target:         target,
		fetcher:        fetcher,
		store:          store,
		pause:          10 * time.Second,
		storeFields:    model.DefaultStoreFields(),
		requiredFields: model.DefaultRequiredFields(),
		logger:         slog.Default(),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.linkDepth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, c.linkDepth)
	}
	if c.pause < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPause, c.pause)
	}

	c.logger = c.logger.With("target", target.Name)

	extractor, err := extract.New(target.Method, extract.Options{
		StoreFields:    c.storeFields,
		RequiredFields: c.requiredFields,
		Scope:          target.Scope,
		Logger:         c.logger,
		Now:            c.now,
	})
	if err != nil {
		return nil, err
	}
	c.extractor = extractor

	links, err := NewLinkFinder(target.BaseURL, target.LinkPrefix)
	if err != nil {
		return nil, err
	}
	c.links = links

	return c, nil
}

// State returns a snapshot of the crawl position.
func (c *Collector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Collector) updateState(fn func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
}

// Collect visits links and the pages they lead to up to the link depth,
// storing every new recipe found. It stops early only when ctx is done.
func (c *Collector) Collect(ctx context.Context, links []string) (Stats, error) {
	var stats Stats
	list := links

	for depth := c.linkDepth; ; depth-- {
		c.logger.Info("processing list", "depth", depth, "items", len(list))
		c.updateState(func(s *State) {
			s.Depth = depth
			s.Current = len(list)
			s.Queued = 0
		})

		var queue []string
		known := make(map[string]struct{}, len(list))
		for _, u := range list {
			known[u] = struct{}{}
		}

		for _, u := range list {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			stats.Visited++

			found, fetched := c.collectURL(ctx, u, depth, &stats)
			for _, link := range found {
				if _, dup := known[link]; dup {
					continue
				}
				known[link] = struct{}{}
				queue = append(queue, link)
				stats.LinksQueued++
				c.logger.Debug("adding link", "url", link)
			}
			if len(found) > 0 {
				c.updateState(func(s *State) { s.Queued = len(queue) })
			}

			if fetched {
				if err := sleep(ctx, c.pause); err != nil {
					return stats, err
				}
			}
		}

		if depth <= 0 {
			return stats, nil
		}
		list = queue
	}
}

// collectURL processes one URL. It returns the discovered follow-up links
// and whether a fetch was attempted.
func (c *Collector) collectURL(ctx context.Context, u string, depth int, stats *Stats) ([]string, bool) {
	existing, err := c.store.FindOne(ctx, u)
	if err != nil {
		c.logger.Error("storage lookup failed", "url", u, "error", err)
		existing = nil
	}
	duplicate := existing != nil

	if duplicate && depth == 0 {
		c.logger.Info("skipping url", "url", u)
		stats.Skipped++
		return nil, false
	}

	page, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		c.logger.Error("processing failed", "url", u, "error", err)
		stats.Failed++
		return nil, true
	}
	stats.Fetched++
	c.updateState(func(s *State) { s.Fetched++ })

	if !duplicate {
		records := c.extractor.Extract(page, u)
		c.logger.Info("found recipes", "url", u, "count", len(records))
		stats.Extracted += len(records)

		if len(records) > 0 {
			stored := len(records)
			if err := c.store.InsertMany(ctx, records); err != nil {
				c.logger.Error("could not insert records", "url", u, "error", err)
				stored -= countErrors(err)
				if stored < 0 {
					stored = 0
				}
			}
			stats.Stored += stored
			c.updateState(func(s *State) { s.Stored += stored })
		}
	}

	if depth <= 0 {
		return nil, true
	}

	found := c.links.Find(page.Doc)
	c.logger.Info("found links", "url", u, "count", len(found))
	return found, true
}

// UpdateMode selects how fetched fields are merged into stored records.
type UpdateMode int

const (
	// updateModeUnset is the zero value and is rejected.
	updateModeUnset UpdateMode = iota

	// Overwrite replaces stored fields with freshly extracted values.
	Overwrite

	// Preserve only adds fields the stored record lacks.
	Preserve
)

// ErrUpdateModeRequired is returned when Update is called without a mode.
var ErrUpdateModeRequired = errors.New("update mode must be Overwrite or Preserve")

// String returns the mode name.
func (m UpdateMode) String() string {
	switch m {
	case Overwrite:
		return "overwrite"
	case Preserve:
		return "preserve"
	default:
		return "unset"
	}
}

// Update re-extracts the stored records for links and merges the result
// according to mode. URLs without a stored record are skipped.
func (c *Collector) Update(ctx context.Context, links []string, mode UpdateMode) (Stats, error) {
	if mode != Overwrite && mode != Preserve {
		return Stats{}, ErrUpdateModeRequired
	}

	var stats Stats
	c.updateState(func(s *State) {
		s.Depth = 0
		s.Current = len(links)
		s.Queued = 0
	})

	for _, u := range links {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Visited++

		existing, err := c.store.FindOne(ctx, u)
		if err != nil {
			c.logger.Error("storage lookup failed", "url", u, "error", err)
			stats.Failed++
			continue
		}
		if existing == nil {
			c.logger.Info("record does not exist", "url", u)
			stats.Skipped++
			continue
		}

		page, err := c.fetcher.Fetch(ctx, u)
		if err == nil {
			stats.Fetched++
			c.updateState(func(s *State) { s.Fetched++ })
			c.updateRecords(ctx, u, existing, c.extractor.Extract(page, u), mode, &stats)
		} else {
			c.logger.Error("processing failed", "url", u, "error", err)
			stats.Failed++
		}

		if err := sleep(ctx, c.pause); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (c *Collector) updateRecords(ctx context.Context, u string, existing model.Recipe, records []model.Recipe, mode UpdateMode, stats *Stats) {
	stats.Extracted += len(records)
	for _, rec := range records {
		updates := make(model.Recipe, len(rec))
		for k, v := range rec {
			if mode == Preserve && existing.Has(k) {
				continue
			}
			updates[k] = v
		}
		updates[model.FieldUpdateTime] = c.now().UTC()

		if err := c.store.UpdateOne(ctx, u, updates); err != nil {
			c.logger.Error("could not update record", "url", u, "error", err)
			stats.Failed++
			continue
		}
		stats.Updated++
		c.logger.Info("updated", "url", u, "mode", mode.String())
	}
}

// countErrors returns how many errors err joins.
func countErrors(err error) int {
	if err == nil {
		return 0
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
