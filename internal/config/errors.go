package config

import "errors"

// Configuration validation errors.
//
// Design decision: package-level sentinel errors rather than ad-hoc
// fmt.Errorf values, so callers can branch with errors.Is while the
// messages stay human-readable.
var (
	// ErrNoStartURL is returned when no start URL is configured.
	ErrNoStartURL = errors.New("no start URL: provide a directory page to crawl")

	// ErrInvalidStartURL is returned when the start URL does not parse
	// as an absolute http(s) URL.
	ErrInvalidStartURL = errors.New("invalid start URL: must be an absolute URL")

	// ErrNoPeoplePath is returned when the people path segment is empty.
	// Without it no link can be classified as a profile link.
	ErrNoPeoplePath = errors.New("no people path: provide the path segment that identifies profile links")

	// ErrInvalidTimeout is returned when the HTTP timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
