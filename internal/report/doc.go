// Package report renders stored profiles and crawl summaries for output.
//
// Two writers implement the Writer interface: JSON for programmatic
// consumers and GitHub Flavored Markdown for sharing. Both render the
// same Export payload, so the export command only picks a format and a
// destination.
package report
