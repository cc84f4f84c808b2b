package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nimaibhat/BuckeyeBrains/internal/crawler"
	"github.com/nimaibhat/BuckeyeBrains/internal/model"
)

// memStore is an in-memory ProfileStore for step tests.
type memStore struct {
	mu      sync.Mutex
	records []model.ProfileRecord
}

func (m *memStore) Exists(_ context.Context, profilePath string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ProfilePath == profilePath {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Save(_ context.Context, records []model.ProfileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *memStore) All(_ context.Context) ([]model.ProfileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ProfileRecord(nil), m.records...), nil
}

func (m *memStore) Close() error { return nil }

// newGuessOnlySite serves a directory whose pagination is only reachable
// through guessed /page/N URLs. The root listing is empty, /page/1 links
// one person, and every other guessed page is empty.
func newGuessOnlySite(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	hits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/people", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		fmt.Fprint(w, `<html><body><p>Loading directory…</p></body></html>`)
	})
	mux.HandleFunc("/people/page/1", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		fmt.Fprint(w, `<html><body>
			<a href="/people/dana">Dana</a>
		</body></html>`)
	})
	mux.HandleFunc("/people/dana", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		fmt.Fprint(w, `<html><body>
			<div class="bio-top-left"><h1>Dana</h1></div>
			<div class="bio-btm-left"><p>Biography of Dana.</p></div>
		</body></html>`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		fmt.Fprint(w, `<html><body></body></html>`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &hits
}

// newStepSpider wires a spider against the given server and store.
func newStepSpider(t *testing.T, server *httptest.Server, store *memStore) *crawler.Spider {
	t.Helper()

	fetcher := crawler.NewFetcher(server.Client(), crawler.WithDelay(0))
	discoverer, err := crawler.NewLinkDiscoverer(server.URL+"/people", "/people/")
	if err != nil {
		t.Fatalf("failed to create discoverer: %v", err)
	}

	return crawler.NewSpider(fetcher, crawler.NewProfileParser(), discoverer, store)
}

func TestCrawlStep_Do(t *testing.T) {
	t.Parallel()

	server, _ := newGuessOnlySite(t)
	store := &memStore{}
	step := NewCrawlStep(newStepSpider(t, server, store), server.URL+"/people", nil)

	if got := step.Name(); got != "crawl" {
		t.Errorf("Name() = %q, want %q", got, "crawl")
	}

	report := model.NewCrawlReport(server.URL+"/people", model.StorageModeFile)
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	// The root listing has no links at all, so the traversal stops there.
	if report.PagesVisited != 1 {
		t.Errorf("PagesVisited = %d, want 1", report.PagesVisited)
	}
	if report.ProfileCount() != 0 {
		t.Errorf("ProfileCount() = %d, want 0", report.ProfileCount())
	}
}

func TestGuessStep_Do(t *testing.T) {
	t.Parallel()

	t.Run("tries guessed pages and stops at first empty one", func(t *testing.T) {
		t.Parallel()

		server, _ := newGuessOnlySite(t)
		store := &memStore{}
		spider := newStepSpider(t, server, store)
		step := NewGuessStep(spider, store, server.URL+"/people", nil)

		report := model.NewCrawlReport(server.URL+"/people", model.StorageModeFile)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("Do() error = %v", err)
		}

		if !report.UsedPatternFallback {
			t.Error("UsedPatternFallback = false, want true")
		}
		if report.ProfileCount() != 1 {
			t.Fatalf("ProfileCount() = %d, want 1", report.ProfileCount())
		}
		if got := report.Profiles[0].FullName; got != "Dana" {
			t.Errorf("Profiles[0].FullName = %q, want %q", got, "Dana")
		}

		stored, err := store.All(context.Background())
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		if len(stored) != 1 {
			t.Errorf("len(stored) = %d, want 1", len(stored))
		}

		// /page/1 has people, the next guess /p/1 is empty and ends the guessing.
		if report.PagesVisited != 2 {
			t.Errorf("PagesVisited = %d, want 2", report.PagesVisited)
		}
	})

	t.Run("unavailable guessed page ends the guessing", func(t *testing.T) {
		t.Parallel()

		hits := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			http.NotFound(w, r)
		}))
		t.Cleanup(server.Close)

		store := &memStore{}
		spider := newStepSpider(t, server, store)
		step := NewGuessStep(spider, store, server.URL+"/people", nil)

		report := model.NewCrawlReport(server.URL+"/people", model.StorageModeFile)
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("Do() error = %v", err)
		}

		// The first 404 is the terminal signal; no further guesses fetched.
		if hits != 1 {
			t.Errorf("server hits = %d, want 1", hits)
		}
		if report.PagesVisited != 1 {
			t.Errorf("PagesVisited = %d, want 1", report.PagesVisited)
		}
		if len(report.PageErrors) != 1 {
			t.Errorf("len(PageErrors) = %d, want 1", len(report.PageErrors))
		}
		if !report.UsedPatternFallback {
			t.Error("UsedPatternFallback = false, want true")
		}
	})

	t.Run("no-op when the crawl already found profiles", func(t *testing.T) {
		t.Parallel()

		server, hits := newGuessOnlySite(t)
		store := &memStore{}
		spider := newStepSpider(t, server, store)
		step := NewGuessStep(spider, store, server.URL+"/people", nil)

		report := model.NewCrawlReport(server.URL+"/people", model.StorageModeFile)
		report.Profiles = append(report.Profiles, model.ProfileRecord{ProfilePath: "/people/ed"})

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if report.UsedPatternFallback {
			t.Error("UsedPatternFallback = true, want false")
		}
		if *hits != 0 {
			t.Errorf("server hits = %d, want 0", *hits)
		}
	})

	t.Run("no-op when existing profiles were skipped", func(t *testing.T) {
		t.Parallel()

		server, hits := newGuessOnlySite(t)
		store := &memStore{}
		spider := newStepSpider(t, server, store)
		step := NewGuessStep(spider, store, server.URL+"/people", nil)

		report := model.NewCrawlReport(server.URL+"/people", model.StorageModeFile)
		report.SkippedExisting = 3

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if report.UsedPatternFallback {
			t.Error("UsedPatternFallback = true, want false")
		}
		if *hits != 0 {
			t.Errorf("server hits = %d, want 0", *hits)
		}
	})
}

// fakeChecker implements DowngradeChecker for summary tests.
type fakeChecker struct {
	downgraded bool
}

func (c *fakeChecker) Downgraded() bool { return c.downgraded }

func TestSummaryStep_Do(t *testing.T) {
	t.Parallel()

	t.Run("stamps finish time and records downgrade", func(t *testing.T) {
		t.Parallel()

		step := NewSummaryStep(&fakeChecker{downgraded: true}, nil)
		report := model.NewCrawlReport("https://example.edu/people", model.StorageModeDatabase)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if report.FinishedAt.IsZero() {
			t.Error("FinishedAt not set")
		}
		if !report.StorageDowngraded {
			t.Error("StorageDowngraded = false, want true")
		}
	})

	t.Run("nil checker leaves downgrade flag alone", func(t *testing.T) {
		t.Parallel()

		step := NewSummaryStep(nil, nil)
		report := model.NewCrawlReport("https://example.edu/people", model.StorageModeFile)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if report.StorageDowngraded {
			t.Error("StorageDowngraded = true, want false")
		}
	})
}
