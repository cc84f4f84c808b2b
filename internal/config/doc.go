// Package config holds all runtime configuration for the faculty crawler.
//
// Configuration comes from three sources, in increasing precedence:
//
//  1. Built-in defaults (NewConfig)
//  2. The optional .buckeyebrains YAML file, searched in the current
//     directory and then the home directory, which may override selectors
//     and crawl behavior per site
//  3. CLI flags, applied by the cmd package
//
// The database connection string is resolved separately: from the
// DATABASE_URL environment variable, optionally populated from .env.local
// or .env files (checked in that preference order, first hit wins).
//
// Design decision: the Config struct is flat and passed by explicit
// dependency injection rather than read from global state. Validation
// happens once, after flag parsing, so failures surface before any
// network or storage work begins.
package config
