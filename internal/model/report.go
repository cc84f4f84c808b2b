package model

import "time"

// StorageMode identifies which persistence backend a crawl run used.
type StorageMode string

// Storage modes. A run starts in either mode; a database run may downgrade
// to file mode after a write failure (see the storage package).
const (
	// StorageModeDatabase means profiles were written to the database.
	StorageModeDatabase StorageMode = "database"

	// StorageModeFile means profiles were written to the local JSON file.
	StorageModeFile StorageMode = "file"
)

// CrawlReport summarizes a single crawl run.
// It is filled in by the crawl pipeline steps and rendered by the report
// writers at the end of the run.
type CrawlReport struct {
	// StartURL is the directory page the crawl started from.
	StartURL string `json:"start_url"`

	// StorageMode records which backend the run started with.
	StorageMode StorageMode `json:"storage_mode"`

	// StorageDowngraded is true when a database write failure switched
	// the run to file storage partway through.
	StorageDowngraded bool `json:"storage_downgraded"`

	// PagesVisited is the number of directory pages fetched.
	PagesVisited int `json:"pages_visited"`

	// Profiles are the records scraped during this run, in discovery order.
	Profiles []ProfileRecord `json:"profiles"`

	// SkippedExisting counts people-links skipped because a record with
	// the same profile path was already in storage.
	SkippedExisting int `json:"skipped_existing"`

	// UsedPatternFallback is true when structural pagination discovery
	// found nothing and the page-number guessing strategy ran.
	UsedPatternFallback bool `json:"used_pattern_fallback"`

	// PageErrors holds per-page fetch or parse failures. These are
	// non-fatal; the crawl continues past them.
	PageErrors []PageError `json:"page_errors,omitempty"`

	// Steps lists the pipeline steps that ran, in execution order.
	Steps []string `json:"steps,omitempty"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// PageError records a non-fatal failure while processing one page.
type PageError struct {
	// URL is the page that failed.
	URL string `json:"url"`

	// Message is the failure description.
	Message string `json:"message"`
}

// NewCrawlReport creates a report for a run starting at startURL.
func NewCrawlReport(startURL string, mode StorageMode) *CrawlReport {
	return &CrawlReport{
		StartURL:    startURL,
		StorageMode: mode,
		Profiles:    make([]ProfileRecord, 0),
		StartedAt:   time.Now(),
	}
}

// AddPageError appends a non-fatal page failure to the report.
func (r *CrawlReport) AddPageError(url string, err error) {
	if err == nil {
		return
	}
	r.PageErrors = append(r.PageErrors, PageError{URL: url, Message: err.Error()})
}

// ProfileCount returns the number of profiles scraped this run.
func (r *CrawlReport) ProfileCount() int {
	return len(r.Profiles)
}

// WithAboutCount returns how many scraped profiles carry biography text.
func (r *CrawlReport) WithAboutCount() int {
	n := 0
	for i := range r.Profiles {
		if r.Profiles[i].HasAbout() {
			n++
		}
	}
	return n
}
