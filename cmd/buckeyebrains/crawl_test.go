package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nimaibhat/BuckeyeBrains/internal/config"
	"github.com/nimaibhat/BuckeyeBrains/internal/log"
	"github.com/nimaibhat/BuckeyeBrains/internal/model"
)

// unreachableDSN fails fast so tests never wait on a database connection attempt.
const unreachableDSN = "postgres://localhost:1/faculty?sslmode=disable"

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl" {
			t.Errorf("expected use 'crawl', got %q", cmd.Use)
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has url flag with default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("url")
		if flag == nil {
			t.Fatal("expected url flag")
		}
		if flag.Shorthand != "u" {
			t.Errorf("expected shorthand 'u', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultStartURL {
			t.Errorf("expected default %q, got %q", config.DefaultStartURL, flag.DefValue)
		}
	})

	t.Run("has max-pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-pages")
		if flag == nil {
			t.Fatal("expected max-pages flag")
		}
		if flag.DefValue != "50" {
			t.Errorf("expected default '50', got %q", flag.DefValue)
		}
	})

	t.Run("has storage flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db") == nil {
			t.Error("expected db flag")
		}
		if cmd.Flags().Lookup("store") == nil {
			t.Error("expected store flag")
		}
	})
}

// TestBuildCrawlConfig tests config assembly from flags.
func TestBuildCrawlConfig(t *testing.T) {
	t.Run("flags override defaults", func(t *testing.T) {
		cmd := NewCrawlCmd()
		for flag, value := range map[string]string{
			"url":       "https://example.edu/people",
			"max-pages": "7",
			"delay":     "0s",
			"db":        "postgres://db.example.edu/faculty",
			"store":     "out.json",
		} {
			if err := cmd.Flags().Set(flag, value); err != nil {
				t.Fatalf("failed to set flag %s: %v", flag, err)
			}
		}

		cfg, err := buildCrawlConfig(cmd)
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}

		if cfg.StartURL != "https://example.edu/people" {
			t.Errorf("StartURL = %q", cfg.StartURL)
		}
		if cfg.MaxPages != 7 {
			t.Errorf("MaxPages = %d, want 7", cfg.MaxPages)
		}
		if cfg.CrawlDelay != 0 {
			t.Errorf("CrawlDelay = %v, want 0", cfg.CrawlDelay)
		}
		if cfg.DatabaseURL != "postgres://db.example.edu/faculty" {
			t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
		}
		if cfg.FileStorePath != "out.json" {
			t.Errorf("FileStorePath = %q", cfg.FileStorePath)
		}
	})

	t.Run("db flag overrides environment", func(t *testing.T) {
		t.Setenv(config.EnvDatabaseURL, "postgres://env.example.edu/faculty")

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("db", "postgres://flag.example.edu/faculty"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}

		cfg, err := buildCrawlConfig(cmd)
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}
		if cfg.DatabaseURL != "postgres://flag.example.edu/faculty" {
			t.Errorf("DatabaseURL = %q, want flag value", cfg.DatabaseURL)
		}
	})

	t.Run("explicit missing config file errors", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}

		if _, err := buildCrawlConfig(cmd); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("config file site overrides apply", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".buckeyebrains")
		content := `sites:
  example.edu:
    delay: 9
    selectors:
      name_container: div.custom-name
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("url", "https://example.edu/people"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}

		cfg, err := buildCrawlConfig(cmd)
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}
		if cfg.CrawlDelay != 9*time.Second {
			t.Errorf("CrawlDelay = %v, want 9s", cfg.CrawlDelay)
		}
		if cfg.Selectors.NameContainer != "div.custom-name" {
			t.Errorf("NameContainer = %q", cfg.Selectors.NameContainer)
		}
	})
}

// newCrawlTestConfig builds a config pointed at the test server with all
// network waits disabled.
func newCrawlTestConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.StartURL = serverURL + "/people"
	cfg.CrawlDelay = 0
	cfg.Timeout = 5 * time.Second
	cfg.DatabaseURL = unreachableDSN
	cfg.FileStorePath = filepath.Join(t.TempDir(), "profiles.json")
	cfg.CacheDir = t.TempDir()
	return cfg
}

// TestRunCrawl runs the crawl pipeline end to end against a local site,
// falling back to file storage.
func TestRunCrawl(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/people", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `<html><body><a href="/people/carol">Carol</a></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body>
			<a href="/people/alice">Alice</a>
			<a href="/people/bob">Bob</a>
			<div class="pagination"><a href="/people?page=2">Next</a></div>
		</body></html>`)
	})
	mux.HandleFunc("/people/", func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(r.URL.Path)
		fmt.Fprintf(w, `<html><body>
			<div class="bio-top-left"><h1>%s</h1></div>
			<div class="bio-btm-left"><p>Biography of %s.</p></div>
		</body></html>`, name, name)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := newCrawlTestConfig(t, server.URL)
	logger := log.NewLogger(os.Stderr, false)

	out := &bytes.Buffer{}
	if err := runCrawl(context.Background(), cfg, false, logger, out); err != nil {
		t.Fatalf("runCrawl() error = %v", err)
	}

	if !strings.Contains(out.String(), "new profiles:     3") {
		t.Errorf("summary missing profile count:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "storage: file") {
		t.Errorf("summary missing storage mode:\n%s", out.String())
	}

	// The file store should hold all three scraped profiles.
	data, err := os.ReadFile(cfg.FileStorePath)
	if err != nil {
		t.Fatalf("failed to read file store: %v", err)
	}
	var stored []model.ProfileRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("file store is not valid JSON: %v", err)
	}
	if len(stored) != 3 {
		t.Errorf("stored %d profiles, want 3", len(stored))
	}
}

// TestRunCrawl_JSONReport checks the machine-readable run report.
func TestRunCrawl_JSONReport(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><p>Nobody here.</p></body></html>`)
	}))
	t.Cleanup(server.Close)

	cfg := newCrawlTestConfig(t, server.URL)
	logger := log.NewLogger(os.Stderr, false)

	out := &bytes.Buffer{}
	if err := runCrawl(context.Background(), cfg, true, logger, out); err != nil {
		t.Fatalf("runCrawl() error = %v", err)
	}

	// Skip the banner line, then parse the JSON report.
	text := out.String()
	idx := strings.Index(text, "{")
	if idx < 0 {
		t.Fatalf("no JSON object in output:\n%s", text)
	}
	var report model.CrawlReport
	if err := json.Unmarshal([]byte(text[idx:]), &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.StorageMode != model.StorageModeFile {
		t.Errorf("StorageMode = %q, want %q", report.StorageMode, model.StorageModeFile)
	}
	if !report.UsedPatternFallback {
		t.Error("UsedPatternFallback = false, want true for an empty directory")
	}
}
