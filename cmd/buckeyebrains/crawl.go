package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nimaibhat/BuckeyeBrains/internal/cache"
	"github.com/nimaibhat/BuckeyeBrains/internal/config"
	"github.com/nimaibhat/BuckeyeBrains/internal/crawler"
	"github.com/nimaibhat/BuckeyeBrains/internal/log"
	"github.com/nimaibhat/BuckeyeBrains/internal/model"
	"github.com/nimaibhat/BuckeyeBrains/internal/pipeline"
	"github.com/nimaibhat/BuckeyeBrains/internal/storage"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a faculty directory and store the profiles",
		Long: `Crawl walks a paginated faculty directory, scrapes each person's
profile page, and persists the records.

Profiles are stored in a PostgreSQL database when one is reachable
(DATABASE_URL, or the usual local addresses); otherwise they go to a
local JSON file. A database write failure mid-run switches the rest of
the run to the file store. Profiles already in the store are skipped, so
repeated runs only pick up new people.

Examples:
  # Crawl the default directory
  buckeyebrains crawl

  # Crawl a different directory
  buckeyebrains crawl --url https://linguistics.osu.edu/people

  # Refetch pages even when cached copies are fresh
  buckeyebrains crawl --refresh

  # Print the run report as JSON
  buckeyebrains crawl --json

Configuration file (.buckeyebrains) example:
  sites:
    linguistics.osu.edu:
      people_path: /people/
      delay: 3
      max_pages: 20
      selectors:
        name_container: div.bio-top-left
        bio_container: div.bio-btm-left`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().StringP("url", "u", config.DefaultStartURL,
		"Directory page to start crawling from")
	cmd.Flags().String("people-path", config.DefaultPeoplePath,
		"URL path segment that marks a link as a profile link")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of directory pages to visit")
	cmd.Flags().DurationP("delay", "d", config.DefaultCrawlDelay,
		"Pause after each successful fetch")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().BoolP("refresh", "r", false,
		"Refetch pages even when cached copies are fresh")

	// Storage flags
	cmd.Flags().String("db", "",
		"Database connection string (overrides DATABASE_URL)")
	cmd.Flags().StringP("store", "s", config.DefaultFileStorePath,
		"Path of the JSON fallback store")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .buckeyebrains in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Print the run report as JSON instead of the summary")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildCrawlConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	jsonReport, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	return runCrawl(ctx, cfg, jsonReport, logger, cmd.OutOrStdout())
}

// buildCrawlConfig creates a Config from env files, the config file, and
// cobra command flags, in that precedence order.
func buildCrawlConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	// Environment first: .env.local / .env may hold DATABASE_URL.
	if _, err := config.LoadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	cfg.DatabaseURL = os.Getenv(config.EnvDatabaseURL)

	var err error

	cfg.StartURL, err = cmd.Flags().GetString("url")
	if err != nil {
		return nil, err
	}

	cfg.PeoplePath, err = cmd.Flags().GetString("people-path")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Refresh, err = cmd.Flags().GetBool("refresh")
	if err != nil {
		return nil, err
	}

	if db, err := cmd.Flags().GetString("db"); err != nil {
		return nil, err
	} else if db != "" {
		cfg.DatabaseURL = db
	}

	cfg.FileStorePath, err = cmd.Flags().GetString("store")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Load per-site overrides from the config file.
	// If the user explicitly specified a path, error when it is missing.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	foundPath := config.FindConfigFile(configPath)

	switch {
	case foundPath != "":
		cf, err := config.LoadConfigFile(foundPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", foundPath, err)
		}
		cfg.ApplySite(cf)
	case configPath != "":
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runCrawl executes the crawl pipeline against the configured directory.
func runCrawl(ctx context.Context, cfg *config.Config, jsonReport bool, logger *slog.Logger, out io.Writer) error {
	// Pick the storage backend: database when reachable, file otherwise.
	store, mode, err := storage.Resolve(ctx, cfg.DatabaseURL, cfg.FileStorePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	spider, checker, cleanup, err := buildSpider(ctx, cfg, store, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintf(out, "Crawling %s (storage: %s)...\n", cfg.StartURL, mode)
	report := model.NewCrawlReport(cfg.StartURL, mode)

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddSteps(
		pipeline.NewCrawlStep(spider, cfg.StartURL, logger),
		pipeline.NewGuessStep(spider, store, cfg.StartURL, logger),
		pipeline.NewSummaryStep(checker, logger),
	)

	if err := p.Execute(ctx, report); err != nil {
		return err
	}

	return outputCrawlReport(out, report, jsonReport)
}

// cacheRetention bounds how long page snapshots are kept. Snapshots
// older than this are purged when the cache is opened.
const cacheRetention = 30 * 24 * time.Hour

// buildSpider wires the fetcher, parser, discoverer, and page cache into
// a spider. The returned cleanup closes the cache; it is a no-op when the
// cache could not be opened.
func buildSpider(ctx context.Context, cfg *config.Config, store storage.ProfileStore, logger *slog.Logger) (*crawler.Spider, pipeline.DowngradeChecker, func(), error) {
	client := &http.Client{Timeout: cfg.Timeout}
	fetcher := crawler.NewFetcher(client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithFetcherLogger(logger),
	)

	parser := crawler.NewProfileParser(parserOptions(cfg)...)

	discoverer, err := crawler.NewLinkDiscoverer(cfg.StartURL, cfg.PeoplePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid start URL: %w", err)
	}

	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithRefresh(cfg.Refresh),
		crawler.WithSpiderLogger(logger),
	}

	// The page cache is an optimization; a failure to open it only costs
	// refetches.
	cleanup := func() {}
	pageCache, err := cache.Open(cfg.CacheDir, cache.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open page cache, crawling without it", "dir", cfg.CacheDir, "error", err)
	} else {
		if purged, err := pageCache.Purge(ctx, cacheRetention); err != nil {
			logger.Warn("failed to purge old page snapshots", "error", err)
		} else if purged > 0 {
			logger.Debug("purged old page snapshots", "count", purged)
		}
		spiderOpts = append(spiderOpts, crawler.WithPageCache(pageCache, cfg.CacheWindow))
		cleanup = func() {
			if err := pageCache.Close(); err != nil {
				logger.Error("failed to close page cache", "error", err)
			}
		}
	}

	spider := crawler.NewSpider(fetcher, parser, discoverer, store, spiderOpts...)

	var checker pipeline.DowngradeChecker
	if fb, ok := store.(*storage.Fallback); ok {
		checker = fb
	}

	return spider, checker, cleanup, nil
}

// parserOptions maps configured selectors onto parser options, leaving
// the built-in selectors in place for unset fields.
func parserOptions(cfg *config.Config) []crawler.ParserOption {
	var opts []crawler.ParserOption
	if cfg.Selectors.NameContainer != "" {
		opts = append(opts, crawler.WithNameContainer(cfg.Selectors.NameContainer))
	}
	if cfg.Selectors.BioContainer != "" {
		opts = append(opts, crawler.WithBioContainer(cfg.Selectors.BioContainer))
	}
	if cfg.Selectors.ExpertiseContainer != "" {
		opts = append(opts, crawler.WithExpertiseContainer(cfg.Selectors.ExpertiseContainer))
	}
	if len(cfg.Selectors.Fallbacks) > 0 {
		opts = append(opts, crawler.WithFallbackSelectors(cfg.Selectors.Fallbacks))
	}
	return opts
}

// outputCrawlReport prints the run report, as JSON or a short summary.
func outputCrawlReport(out io.Writer, report *model.CrawlReport, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	fmt.Fprintf(out, "\nCrawl completed in %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(out, "  pages visited:    %d\n", report.PagesVisited)
	fmt.Fprintf(out, "  new profiles:     %d (%d with a biography)\n", report.ProfileCount(), report.WithAboutCount())
	fmt.Fprintf(out, "  already stored:   %d\n", report.SkippedExisting)
	if report.UsedPatternFallback {
		fmt.Fprintln(out, "  pagination:       guessed page numbers (no links found)")
	}
	if report.StorageDowngraded {
		fmt.Fprintln(out, "  storage:          database write failed, switched to file")
	}
	if len(report.PageErrors) > 0 {
		fmt.Fprintf(out, "  page errors:      %d\n", len(report.PageErrors))
		for _, pe := range report.PageErrors {
			fmt.Fprintf(out, "    %s: %s\n", pe.URL, pe.Message)
		}
	}
	return nil
}
