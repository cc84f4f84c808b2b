// Package main provides the entry point for the BuckeyeBrains CLI.
//
// BuckeyeBrains scrapes university faculty directory pages into a local
// store and answers questions about the collected profiles.
//
// Usage:
//
//	buckeyebrains crawl
//	buckeyebrains crawl --url https://linguistics.osu.edu/people
//	buckeyebrains ask
//	buckeyebrains export --markdown
//
// See --help for all available options.
package main

// main is the entry point for BuckeyeBrains.
func main() {
	Execute()
}
