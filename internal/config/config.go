package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the behavior of the original scraper where applicable and
// are deliberately conservative toward the target site.
const (
	// DefaultStartURL is the faculty directory page the crawl starts from.
	DefaultStartURL = "https://linguistics.osu.edu/people"

	// DefaultPeoplePath is the URL path segment that identifies a link as
	// pointing to an individual profile page.
	DefaultPeoplePath = "/people/"

	// DefaultTimeout is the per-request HTTP timeout. 30 seconds is
	// generous for a university CMS that can be slow under load; a failure
	// at this layer is treated as "page unavailable this run", not retried.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDelay is the politeness pause after each successful
	// fetch. Two seconds keeps the crawl well under any rate limit a
	// public directory is likely to enforce.
	DefaultCrawlDelay = 2 * time.Second

	// DefaultMaxPages caps the number of directory pages visited in one
	// run. This prevents runaway crawling if pagination discovery loops.
	DefaultMaxPages = 50

	// DefaultUserAgent is sent with every request. A mainstream browser
	// string, matching what the directory serves full markup to.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxBodySize limits how much of a response body is read.
	// 5MB is far beyond any real profile page and bounds memory use.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultFileStorePath is the JSON fallback store, relative to the
	// working directory so repeat runs in the same place accumulate.
	DefaultFileStorePath = "faculty_profiles.json"

	// DefaultCacheWindow is how long a directory-page fetch stays fresh
	// in the local crawl cache before it is fetched again.
	DefaultCacheWindow = 24 * time.Hour

	// DefaultRetrievalK is how many profiles the ask command surfaces
	// per question.
	DefaultRetrievalK = 3

	// AppName is the application name used for XDG directory paths.
	AppName = "buckeyebrains"
)

// Config holds all options for a crawl run.
// It is built from defaults, optionally merged with a config file, then
// overridden by CLI flags, and validated once before use.
type Config struct {
	// StartURL is the directory page the crawl starts from.
	StartURL string

	// PeoplePath is the path segment that marks a link as a profile link.
	PeoplePath string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// CrawlDelay is the pause after each successful fetch.
	CrawlDelay time.Duration

	// MaxPages caps the number of directory pages visited per run.
	MaxPages int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// DatabaseURL is the document store connection string. Empty means
	// try the well-known local addresses and fall back to file storage.
	DatabaseURL string

	// FileStorePath is where the JSON fallback store lives.
	FileStorePath string

	// CacheDir is the directory for the SQLite crawl cache.
	// Defaults to the XDG data directory.
	CacheDir string

	// CacheWindow is how long a cached directory fetch stays fresh.
	CacheWindow time.Duration

	// Refresh forces refetching of pages regardless of cache freshness.
	Refresh bool

	// Verbose enables debug-level logging.
	Verbose bool

	// Selectors are the CSS selectors used by the profile parser.
	// Zero-valued fields fall back to the built-in selectors.
	Selectors Selectors
}

// NewConfig returns a Config populated with defaults.
//
// Design decision: a constructor instead of zero values, because most
// defaults are non-zero and this documents them in one place.
func NewConfig() *Config {
	return &Config{
		StartURL:      DefaultStartURL,
		PeoplePath:    DefaultPeoplePath,
		Timeout:       DefaultTimeout,
		CrawlDelay:    DefaultCrawlDelay,
		MaxPages:      DefaultMaxPages,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		FileStorePath: DefaultFileStorePath,
		CacheDir:      XDGDataDir(),
		CacheWindow:   DefaultCacheWindow,
	}
}

// XDGDataDir returns the XDG data directory for the crawler.
// On Linux: ~/.local/share/buckeyebrains
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the crawler.
// On Linux: ~/.config/buckeyebrains
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// Called once after CLI parsing, before any scraping begins.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	u, err := url.Parse(c.StartURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidStartURL
	}
	if c.PeoplePath == "" {
		return ErrNoPeoplePath
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
