package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nimaibhat/BuckeyeBrains/internal/crawler"
	"github.com/nimaibhat/BuckeyeBrains/internal/model"
	"github.com/nimaibhat/BuckeyeBrains/internal/storage"
)

// guessPageLimit bounds how many guessed page URLs the fallback step
// tries. Directory listings rarely run past a handful of pages; going
// further only hammers the site.
const guessPageLimit = 10

// CrawlStep runs the breadth-first directory traversal.
type CrawlStep struct {
	spider   *crawler.Spider
	startURL string
	logger   *slog.Logger
}

// NewCrawlStep creates a CrawlStep starting from startURL.
func NewCrawlStep(spider *crawler.Spider, startURL string, logger *slog.Logger) *CrawlStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlStep{
		spider:   spider,
		startURL: startURL,
		logger:   logger,
	}
}

// Name returns the step's name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do runs the traversal. Per-page failures are recorded in the report by
// the spider; only traversal-level failures (cancellation) are returned.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	return s.spider.Crawl(ctx, s.startURL, report)
}

// GuessStep tries numbered page URLs when the traversal found no
// profiles. Some directory sites render pagination controls with
// JavaScript, so the crawler sees a first page with people-links but no
// pagination anchors; guessing ?page=N URLs recovers the remaining pages.
type GuessStep struct {
	spider   *crawler.Spider
	store    storage.ProfileStore
	startURL string
	logger   *slog.Logger
}

// NewGuessStep creates a GuessStep probing pages derived from startURL.
func NewGuessStep(spider *crawler.Spider, store storage.ProfileStore, startURL string, logger *slog.Logger) *GuessStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuessStep{
		spider:   spider,
		store:    store,
		startURL: startURL,
		logger:   logger,
	}
}

// Name returns the step's name.
func (s *GuessStep) Name() string {
	return "guess-pagination"
}

// Do fetches guessed page URLs in order, stopping at the first page with
// no people-links. An unfetchable page ends the guessing the same way: a
// 404 past the last real page is how guessed numbering normally runs out.
// The step is a no-op when the traversal already found profiles or
// skipped existing ones, meaning structural discovery worked.
func (s *GuessStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if report.ProfileCount() > 0 || report.SkippedExisting > 0 {
		s.logger.Debug("structural pagination discovery succeeded, skipping guess",
			"profiles", report.ProfileCount(),
			"skipped", report.SkippedExisting,
		)
		return nil
	}

	guesses := crawler.GuessPaginationURLs(s.startURL)
	if len(guesses) > guessPageLimit {
		guesses = guesses[:guessPageLimit]
	}

	s.logger.Info("no profiles found, probing guessed page URLs", "candidates", len(guesses))
	report.UsedPatternFallback = true

	for _, pageURL := range guesses {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		report.PagesVisited++
		records, _, peopleFound, err := s.spider.ScrapeDirectoryPage(ctx, pageURL, report)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report.AddPageError(pageURL, err)
			s.logger.Info("guessed page unavailable, stopping guesses", "url", pageURL, "error", err)
			break
		}

		if len(records) > 0 {
			if err := s.store.Save(ctx, records); err != nil {
				s.logger.Error("failed to persist profiles", "url", pageURL, "error", err)
				report.AddPageError(pageURL, fmt.Errorf("persist profiles: %w", err))
			} else {
				report.Profiles = append(report.Profiles, records...)
			}
		}

		// An empty guessed page means we have run past the last real one.
		if peopleFound == 0 {
			s.logger.Info("guessed page has no people-links, stopping guesses", "url", pageURL)
			break
		}
	}

	return nil
}

// DowngradeChecker reports whether a storage backend switched to its
// fallback during the run. Implemented by storage.Fallback.
type DowngradeChecker interface {
	Downgraded() bool
}

// SummaryStep finalizes the report and logs the run outcome. It should
// always be the last step, and the pipeline should run with
// WithContinueOnError so the summary still fires after a failed crawl.
type SummaryStep struct {
	checker DowngradeChecker
	logger  *slog.Logger
}

// NewSummaryStep creates a SummaryStep. checker may be nil when the run
// started in file mode and has nothing to downgrade from.
func NewSummaryStep(checker DowngradeChecker, logger *slog.Logger) *SummaryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryStep{
		checker: checker,
		logger:  logger,
	}
}

// Name returns the step's name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do stamps the finish time, records a storage downgrade if one
// happened, and logs the run totals.
func (s *SummaryStep) Do(_ context.Context, report *model.CrawlReport) error {
	report.FinishedAt = time.Now()

	if s.checker != nil && s.checker.Downgraded() {
		report.StorageDowngraded = true
	}

	s.logger.Info("crawl finished",
		"pages_visited", report.PagesVisited,
		"profiles", report.ProfileCount(),
		"with_about", report.WithAboutCount(),
		"skipped_existing", report.SkippedExisting,
		"page_errors", len(report.PageErrors),
		"storage_mode", report.StorageMode,
		"storage_downgraded", report.StorageDowngraded,
		"used_pattern_fallback", report.UsedPatternFallback,
		"duration", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
	)

	return nil
}
