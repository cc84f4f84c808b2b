// Package cache provides a local SQLite cache of fetched pages.
//
// Every successful fetch is recorded with its body snapshot, content hash,
// and timestamp. Repeat crawl runs within a freshness window serve pages
// from the cache instead of the network, which keeps re-runs against an
// unchanged site cheap and polite. The profile store remains the system of
// record; the cache can be deleted at any time.
//
// Design decision: one database file in the XDG data directory rather than
// per-run files. The url column is unique and fetches upsert, so the cache
// stays bounded by the number of distinct pages on the site.
package cache
