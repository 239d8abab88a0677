package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultPause is the delay after each fetched URL.
	DefaultPause = 10 * time.Second

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2

	// DefaultRetryInterval is the base backoff; the n-th retry waits n times this.
	DefaultRetryInterval = 60 * time.Second

	// DefaultLinkDepth visits only the seed URLs.
	DefaultLinkDepth = 0

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultConcurrency is the number of profiles crawled at once.
	DefaultConcurrency = 1

	// AppName is the application name used for XDG directory paths.
	AppName = "recipescan"

	// DefaultUserAgent identifies recipescan in HTTP requests.
	DefaultUserAgent = "recipescan/1.0 (+https://github.com/nao1215/recipescan)"
)

// Config holds the runtime options of one command invocation.
// It is populated from defaults, the config file, the environment and CLI
// flags, in that order.
type Config struct {
	// DSN selects the store: a postgres:// URL or a directory holding
	// the SQLite database. Empty means XDGDataDir().
	DSN string

	// Collection is the collection records are read from and written to.
	// Empty means each profile uses a collection named after itself.
	Collection string

	// Profiles are the names of the profiles to crawl.
	Profiles []string

	// ProfileArgs are passed to the profile's link generator.
	ProfileArgs []string

	// LinkFile replaces link generation with a file of URLs.
	LinkFile string

	// LinkDepth is the number of link levels followed beyond the seeds.
	LinkDepth int

	// Pause is the delay after each fetched URL.
	Pause time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// RetryInterval is the base backoff between attempts.
	RetryInterval time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Concurrency is the number of profiles crawled at once.
	Concurrency int

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// File is the loaded configuration file.
	File *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		LinkDepth:     DefaultLinkDepth,
		Pause:         DefaultPause,
		Timeout:       DefaultTimeout,
		MaxRetries:    DefaultMaxRetries,
		RetryInterval: DefaultRetryInterval,
		MaxBodySize:   DefaultMaxBodySize,
		UserAgent:     DefaultUserAgent,
		Concurrency:   DefaultConcurrency,
		File:          NewFile(),
	}
}

// XDGDataDir returns the XDG data directory for recipescan.
// On Linux: ~/.local/share/recipescan
// On macOS: ~/Library/Application Support/recipescan
// On Windows: %LOCALAPPDATA%\recipescan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for recipescan.
// On Linux: ~/.config/recipescan
// On macOS: ~/Library/Application Support/recipescan
// On Windows: %APPDATA%\recipescan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// StoreLocation returns the DSN, or the XDG data directory if none is set.
func (c *Config) StoreLocation() string {
	if c.DSN != "" {
		return c.DSN
	}
	return XDGDataDir()
}

// CollectionFor returns the collection used for the named profile.
func (c *Config) CollectionFor(profile string) string {
	if c.Collection != "" {
		return c.Collection
	}
	return profile
}

// Validate checks if the configuration is valid for a crawl.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Profiles) == 0 {
		return ErrNoProfile
	}

	for _, name := range c.Profiles {
		if _, err := c.File.Profile(name); err != nil {
			return err
		}
	}

	if c.LinkDepth < 0 {
		return ErrInvalidDepth
	}

	if c.Pause < 0 {
		return ErrInvalidPause
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	if c.RetryInterval < 0 {
		return ErrInvalidRetryInterval
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	return nil
}
