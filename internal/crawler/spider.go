package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nimaibhat/BuckeyeBrains/internal/model"
	"github.com/nimaibhat/BuckeyeBrains/internal/storage"
)

// PageCache is the optional fetch cache consulted before hitting the
// network. The sqlite-backed implementation lives in the cache package;
// the Spider only needs these two operations.
type PageCache interface {
	// FreshSnapshot returns the cached body for url when it was fetched
	// within window, and whether such a snapshot exists.
	FreshSnapshot(ctx context.Context, url string, window time.Duration) (string, bool, error)

	// RecordFetch stores the body fetched for url.
	RecordFetch(ctx context.Context, url, body string) error
}

// Spider drives the breadth-first crawl over the faculty directory.
//
// It owns the crawl frontier: a FIFO queue of pending directory-page URLs
// plus a set of already-visited URLs. A URL is enqueued at most once,
// checked against both structures. The traversal is strictly serial.
type Spider struct {
	fetcher    *Fetcher
	parser     *ProfileParser
	discoverer *LinkDiscoverer

	// store receives scraped records and answers existence checks.
	store storage.ProfileStore

	// cache, when set, short-circuits fetches of recently seen pages.
	cache       PageCache
	cacheWindow time.Duration

	// refresh forces refetching regardless of cache freshness.
	refresh bool

	// maxPages caps the number of directory pages visited per run.
	maxPages int

	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the directory page cap for one crawl run.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = n
	}
}

// WithPageCache attaches a fetch cache with the given freshness window.
func WithPageCache(c PageCache, window time.Duration) SpiderOption {
	return func(s *Spider) {
		s.cache = c
		s.cacheWindow = window
	}
}

// WithRefresh forces refetching of pages regardless of cache freshness.
func WithRefresh(refresh bool) SpiderOption {
	return func(s *Spider) {
		s.refresh = refresh
	}
}

// WithSpiderLogger sets a custom logger for the spider.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider from its collaborators.
func NewSpider(fetcher *Fetcher, parser *ProfileParser, discoverer *LinkDiscoverer, store storage.ProfileStore, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:    fetcher,
		parser:     parser,
		discoverer: discoverer,
		store:      store,
		maxPages:   50,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl runs the bounded breadth-first traversal from startURL, persisting
// scraped profiles as it goes and accumulating results into report.
//
// The loop terminates when the queue empties, the page cap is reached, a
// page yields neither people-links nor pagination links, or the context is
// cancelled. Per-page failures are recorded in the report and never abort
// the crawl.
func (s *Spider) Crawl(ctx context.Context, startURL string, report *model.CrawlReport) error {
	visited := make(map[string]bool)
	queued := make(map[string]bool)
	queue := []string{startURL}
	queued[normalizeURL(startURL)] = true

	pageCount := 0

	for len(queue) > 0 && pageCount < s.maxPages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		current := queue[0]
		queue = queue[1:]

		key := normalizeURL(current)
		delete(queued, key)
		if visited[key] {
			continue
		}
		visited[key] = true
		pageCount++
		report.PagesVisited++

		s.logger.Info("scraping directory page", "page", pageCount, "url", current)

		records, paginationLinks, peopleFound, err := s.ScrapeDirectoryPage(ctx, current, report)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report.AddPageError(current, err)
			continue
		}

		if len(records) > 0 {
			if err := s.store.Save(ctx, records); err != nil {
				s.logger.Error("failed to persist profiles", "url", current, "count", len(records), "error", err)
				report.AddPageError(current, fmt.Errorf("persist profiles: %w", err))
			} else {
				report.Profiles = append(report.Profiles, records...)
			}
		} else {
			s.logger.Debug("no new profiles on page", "url", current)
		}

		for _, link := range paginationLinks {
			k := normalizeURL(link)
			if !visited[k] && !queued[k] {
				queued[k] = true
				queue = append(queue, link)
			}
		}

		// A page with neither people-links nor pagination links signals
		// that the crawl has exhausted reachable content.
		if peopleFound == 0 && len(paginationLinks) == 0 {
			s.logger.Info("no profiles or pagination links found, stopping", "url", current)
			break
		}
	}

	return nil
}

// ScrapeDirectoryPage fetches one directory page, visits every not-yet-
// stored people-link on it, and returns the scraped records together with
// the discovered pagination links and the total number of people-links
// seen (including ones skipped as already stored).
//
// Exported because the pattern-guessing fallback fetches individual pages
// outside the frontier traversal.
func (s *Spider) ScrapeDirectoryPage(ctx context.Context, pageURL string, report *model.CrawlReport) (records []model.ProfileRecord, paginationLinks []string, peopleFound int, err error) {
	body, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, nil, 0, err
	}

	profileURLs, paginationLinks, err := s.discoverer.DiscoverLinks(body, pageURL)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("discover links on %s: %w", pageURL, err)
	}

	s.logger.Debug("discovered links", "url", pageURL,
		"people_links", len(profileURLs), "pagination_links", len(paginationLinks))

	for _, profileURL := range profileURLs {
		select {
		case <-ctx.Done():
			return records, paginationLinks, len(profileURLs), ctx.Err()
		default:
		}

		exists, err := s.store.Exists(ctx, profileURL)
		if err != nil {
			s.logger.Warn("existence check failed, treating as new", "profile", profileURL, "error", err)
		}
		if exists {
			s.logger.Debug("profile already stored, skipping", "profile", profileURL)
			report.SkippedExisting++
			continue
		}

		record, err := s.scrapeProfile(ctx, profileURL)
		if err != nil {
			if ctx.Err() != nil {
				return records, paginationLinks, len(profileURLs), ctx.Err()
			}
			report.AddPageError(profileURL, err)
			continue
		}

		s.logger.Info("scraped profile", "profile", profileURL, "name", record.FullName)
		records = append(records, record)
	}

	return records, paginationLinks, len(profileURLs), nil
}

// scrapeProfile fetches and parses a single profile page. A page the
// parser finds no content on still yields a record with empty fields; the
// people-link itself is the datum worth keeping.
func (s *Spider) scrapeProfile(ctx context.Context, profileURL string) (model.ProfileRecord, error) {
	record := model.ProfileRecord{
		ProfilePath: profileURL,
		ProfileURL:  profileURL,
	}

	body, err := s.fetchPage(ctx, profileURL)
	if err != nil {
		return record, err
	}

	content, err := s.parser.ParseProfile(body)
	if err != nil {
		s.logger.Debug("profile page not parseable", "profile", profileURL, "error", err)
		return record, nil
	}
	if content == nil {
		s.logger.Debug("no profile content found", "profile", profileURL)
		return record, nil
	}

	record.FullName = content.Name
	record.AboutMe = content.About
	return record, nil
}

// fetchPage returns the page body, served from the cache when a fresh
// snapshot exists, otherwise fetched and recorded.
func (s *Spider) fetchPage(ctx context.Context, pageURL string) (string, error) {
	if s.cache != nil && !s.refresh {
		body, ok, err := s.cache.FreshSnapshot(ctx, pageURL, s.cacheWindow)
		if err != nil {
			s.logger.Debug("cache lookup failed", "url", pageURL, "error", err)
		} else if ok {
			s.logger.Debug("serving page from cache", "url", pageURL)
			return body, nil
		}
	}

	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.RecordFetch(ctx, pageURL, body); err != nil {
			s.logger.Warn("failed to record fetch in cache", "url", pageURL, "error", err)
		}
	}

	return body, nil
}

// normalizeURL normalizes a URL for frontier de-duplication: fragment
// dropped, scheme and host lowercased, empty path treated as "/".
func normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}
