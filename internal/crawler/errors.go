package crawler

import "errors"

// Crawler errors. Transport-level failures are wrapped with the URL by the
// Fetcher; callers treat any fetch error as "page unavailable this run".
var (
	// ErrBadStatus is returned when the server responds with a non-2xx
	// status code. The wrapped error message carries the actual status.
	ErrBadStatus = errors.New("unexpected HTTP status")
)
