package config

import (
	"errors"

	"github.com/nao1215/recipescan/internal/extract"
)

// Configuration validation errors.
// These errors are returned by Config.Validate() and Profile.Validate().
var (
	// ErrNoProfile is returned when no profile is named on the command line.
	ErrNoProfile = errors.New("no profile specified: use --profile")

	// ErrUnknownProfile is returned when a named profile is not in the config file.
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrInvalidBaseURL is returned when a profile's base_url is not an
	// absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base_url: must be an absolute http(s) URL")

	// ErrInvalidLinkPrefix is returned when a profile's link_prefix does not
	// compile as a regular expression.
	ErrInvalidLinkPrefix = errors.New("invalid link_prefix: must be a regular expression")

	// ErrInvalidScope is returned when a profile's scope is not a CSS
	// selector. It is the error extract.New reports for the same scope.
	ErrInvalidScope = extract.ErrInvalidScope

	// ErrInvalidLinks is returned when a profile's links block is inconsistent.
	ErrInvalidLinks = errors.New("invalid links")

	// ErrInvalidDepth is returned when the link depth is negative.
	ErrInvalidDepth = errors.New("invalid link depth: must be non-negative")

	// ErrInvalidPause is returned when the pause is negative.
	ErrInvalidPause = errors.New("invalid pause: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidRetryInterval is returned when the retry interval is negative.
	ErrInvalidRetryInterval = errors.New("invalid retry interval: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
)
