// Package pipeline orchestrates the steps of a crawl run.
//
// A run is a fixed sequence: the breadth-first crawl, the page-number
// guessing fallback for sites whose pagination is invisible to the
// crawler, and a summary step that finalizes the report. Steps share a
// single CrawlReport that accumulates results and non-fatal errors.
//
// Design decision: steps are an interface rather than plain function
// calls so the crawl command can assemble runs declaratively and each
// step's name shows up in logs and in the report's step list.
package pipeline
