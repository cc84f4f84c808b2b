// Package storage persists scraped faculty profiles.
//
// Two interchangeable backends implement ProfileStore: a Postgres table
// (the document store) and a local JSON file. The backend is selected once
// at startup based on connectivity, and the Fallback wrapper handles the
// one failure-mode transition: a database write failure permanently
// downgrades the instance to file storage and retries the failed batch
// there. The downgrade is one-directional and sticky for the lifetime of
// the wrapper.
//
// De-duplication is purely application-level: callers ask Exists before
// scraping a profile, keyed by profile path. No server-side uniqueness is
// enforced.
//
// Design decision: backend selection lives behind the one ProfileStore
// abstraction rather than as a boolean flag branched on inside every
// method. The crawl driver never knows which backend it is talking to.
package storage
