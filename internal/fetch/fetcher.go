package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Default Fetcher settings.
const (
	DefaultMaxRetries    = 2
	DefaultRetryInterval = 60 * time.Second
	DefaultMaxBodySize   = 10 * 1024 * 1024 // 10MB
	DefaultUserAgent     = "recipescan/1.0 (+https://github.com/nao1215/recipescan)"
)

// Fetcher retrieves pages with bounded retries.
type Fetcher struct {
	// client performs the requests. Its Timeout bounds each attempt.
	client *http.Client

	// maxRetries is the number of retries after the first attempt.
	maxRetries int

	// retryInterval is multiplied by the attempt number to get the wait
	// before the next attempt.
	retryInterval time.Duration

	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithRetryInterval sets the base backoff interval.
func WithRetryInterval(d time.Duration) Option {
	return func(f *Fetcher) {
		if d >= 0 {
			f.retryInterval = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize limits how many bytes of a response body are read.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher creates a Fetcher using client. A nil client means
// http.DefaultClient.
func NewFetcher(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client:        client,
		maxRetries:    DefaultMaxRetries,
		retryInterval: DefaultRetryInterval,
		userAgent:     DefaultUserAgent,
		maxBodySize:   DefaultMaxBodySize,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves and parses pageURL.
// It makes up to MaxRetries+1 attempts and returns a *FetchError when the
// page could not be retrieved.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	var lastErr error
	attempt := 0

	for attempt < f.maxRetries+1 {
		attempt++
		f.logger.Info("retrieving page", "url", pageURL, "try", attempt)

		page, err := f.get(ctx, pageURL)
		if err == nil {
			return page, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &FetchError{URL: pageURL, Attempts: attempt, Err: ctxErr}
		}

		var statusErr *StatusError
		switch {
		case errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound:
			f.logger.Error("page not found", "url", pageURL)
			return nil, &FetchError{URL: pageURL, Attempts: attempt, Err: ErrNotFound}
		case errors.As(err, &statusErr):
			f.logger.Warn("request failed", "url", pageURL, "status", statusErr.Code)
		case isTimeout(err):
			f.logger.Error("timed out", "url", pageURL)
		default:
			f.logger.Error("unexpected error", "url", pageURL, "error", err)
		}
		lastErr = err

		if attempt > f.maxRetries {
			break
		}
		if err := sleep(ctx, f.retryInterval*time.Duration(attempt)); err != nil {
			return nil, &FetchError{URL: pageURL, Attempts: attempt, Err: err}
		}
	}

	return nil, &FetchError{
		URL:      pageURL,
		Attempts: attempt,
		Err:      fmt.Errorf("%w: %w", ErrMaxRetries, lastErr),
	}
}

// get performs a single attempt.
func (f *Fetcher) get(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodySize)) //nolint:errcheck // best effort
		return nil, &StatusError{Code: resp.StatusCode}
	}

	page, err := ParsePage(pageURL, resp.Header.Get("Content-Type"), io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}
	page.StatusCode = resp.StatusCode
	return page, nil
}

// isTimeout reports whether err is a client or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
