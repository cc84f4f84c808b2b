// Package model defines the core data types shared across the application.
//
// The central type is ProfileRecord, the unit of persistence: one scraped
// faculty profile identified by its profile path. CrawlReport summarizes a
// single crawl run for logging and report output.
//
// Design decision: model is a leaf package with no internal dependencies.
// Every other package (crawler, storage, report, qa) imports model, never
// the other way around. This keeps the dependency graph acyclic and makes
// the types reusable in tests without pulling in heavy machinery.
package model
