// Package crawler implements the paginated faculty directory crawler.
//
// # Architecture
//
// The package is organized around four components:
//
//   - Fetcher: issues single GET requests with a fixed User-Agent, a hard
//     timeout, and a politeness delay after each successful fetch
//   - ProfileParser: extracts a person's display name and biography text
//     from a profile page, with fallback selector strategies
//   - LinkDiscoverer: finds people-links and pagination links on a
//     directory page
//   - Spider: the breadth-first crawl driver that owns the frontier
//     (FIFO queue plus visited set) and feeds discovered profiles to
//     storage
//
// Design decision: We implement the traversal ourselves rather than using
// a crawling framework because:
//  1. The frontier logic (de-duplication, page cap, terminal signal) is
//     the core of this tool and needs to be exact
//  2. The crawl is deliberately serial with a politeness delay; a
//     framework's concurrency would work against that
//  3. A framework would still need all the same selector tuning
//
// HTML is parsed with goquery, which handles the malformed markup common
// on CMS-generated pages and gives us CSS selectors for the site-specific
// container classes.
//
// # Politeness
//
// The crawler is single-threaded, pauses after every fetch, and never
// retries a failed page within a run. A local fetch cache lets repeat runs
// within a freshness window skip pages entirely.
package crawler
