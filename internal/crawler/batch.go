package crawler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job is one crawl in a batch.
type Job struct {
	// Name identifies the job in logs and results.
	Name string

	// Collector performs the crawl. Each job needs its own Collector.
	Collector *Collector

	// Links are the seed URLs, or the stored URLs to refresh.
	Links []string

	// Mode runs Update with this mode. The zero value runs Collect.
	Mode UpdateMode
}

func (j Job) run(ctx context.Context) (Stats, error) {
	if j.Mode != updateModeUnset {
		return j.Collector.Update(ctx, j.Links, j.Mode)
	}
	return j.Collector.Collect(ctx, j.Links)
}

// Result is the outcome of one Job.
type Result struct {
	Name  string
	Stats Stats
	Err   error
}

// RunBatch runs jobs with at most concurrency crawls in flight. Each crawl
// stays sequential. A failing job does not cancel the others; results are
// returned in job order. The error is non-nil only if ctx was cancelled.
func RunBatch(ctx context.Context, jobs []Job, concurrency int, logger *slog.Logger) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("starting batch", "jobs", len(jobs), "concurrency", concurrency)
	startTime := time.Now()

	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			results[i].Name = job.Name

			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			stats, err := job.run(gctx)
			results[i].Stats = stats
			results[i].Err = err

			if err != nil {
				logger.Warn("crawl failed", "job", job.Name, "error", err)
				return nil
			}
			logger.Info("crawl completed", "job", job.Name, "stored", stats.Stored)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // jobs never return errors

	logger.Info("batch complete", "jobs", len(jobs), "elapsed", time.Since(startTime))

	return results, ctx.Err()
}
