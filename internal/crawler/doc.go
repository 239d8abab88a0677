// Package crawler collects recipes from a site.
//
// # Architecture
//
// The Collector visits a list of seed URLs, extracts recipes from each page
// and stores the accepted records. When a link depth greater than zero is
// configured, links matching the site's link prefix are queued and visited
// one level at a time until the depth is exhausted.
//
// Pages already stored are never extracted twice. At depth zero they are not
// even fetched, so restarting an interrupted crawl is cheap.
//
// # Components
//
//   - Collector: the sequential crawl loop with inspectable State
//   - LinkFinder: discovers follow-up links on a page
//   - RunBatch: runs several collectors concurrently, one per site
//
// # Usage
//
//	c, err := crawler.NewCollector(target, fetcher, db.Collection("recipes"),
//		crawler.WithLinkDepth(1),
//		crawler.WithPause(10*time.Second))
//	stats, err := c.Collect(ctx, seeds)
//
// # Politeness
//
// A single collector never issues concurrent requests. The pause is applied
// after every fetched URL and honours context cancellation.
package crawler
