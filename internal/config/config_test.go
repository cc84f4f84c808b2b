package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

// TestNewConfig tests default configuration values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.StartURL != DefaultStartURL {
		t.Errorf("expected default start URL, got %q", cfg.StartURL)
	}
	if cfg.PeoplePath != DefaultPeoplePath {
		t.Errorf("expected default people path, got %q", cfg.PeoplePath)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("expected default max pages, got %d", cfg.MaxPages)
	}
	if cfg.FileStorePath != DefaultFileStorePath {
		t.Errorf("expected default file store path, got %q", cfg.FileStorePath)
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid default config",
			mutate:  func(_ *Config) {},
			wantErr: nil,
		},
		{
			name:    "empty start URL",
			mutate:  func(c *Config) { c.StartURL = "" },
			wantErr: ErrNoStartURL,
		},
		{
			name:    "relative start URL",
			mutate:  func(c *Config) { c.StartURL = "/people" },
			wantErr: ErrInvalidStartURL,
		},
		{
			name:    "empty people path",
			mutate:  func(c *Config) { c.PeoplePath = "" },
			wantErr: ErrNoPeoplePath,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative crawl delay",
			mutate:  func(c *Config) { c.CrawlDelay = -time.Second },
			wantErr: ErrInvalidCrawlDelay,
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.MaxPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "negative max body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile tests YAML config file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads site overrides", func(t *testing.T) {
		t.Parallel()

		content := `sites:
  linguistics.osu.edu:
    people_path: /faculty/
    delay: 3
    max_pages: 10
    selectors:
      bio_container: ".staff-bio"
      fallbacks:
        - ".biography p"
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		sc, ok := cf.Lookup("linguistics.osu.edu")
		if !ok {
			t.Fatal("expected site config for linguistics.osu.edu")
		}
		if sc.PeoplePath != "/faculty/" {
			t.Errorf("expected people path override, got %q", sc.PeoplePath)
		}
		if sc.Selectors.BioContainer != ".staff-bio" {
			t.Errorf("expected bio container override, got %q", sc.Selectors.BioContainer)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed YAML returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed YAML")
		}
	})
}

// TestFindConfigFile tests the config file search order. Not parallel:
// the XDG case swaps the process environment.
func TestFindConfigFile(t *testing.T) {
	t.Run("explicit path wins when it exists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("sites:\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("missing explicit path returns empty", func(t *testing.T) {
		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})

	t.Run("found in the XDG config directory", func(t *testing.T) {
		orig, had := os.LookupEnv("XDG_CONFIG_HOME")
		t.Cleanup(func() {
			if had {
				os.Setenv("XDG_CONFIG_HOME", orig)
			} else {
				os.Unsetenv("XDG_CONFIG_HOME")
			}
			xdg.Reload()
		})
		os.Setenv("XDG_CONFIG_HOME", t.TempDir())
		xdg.Reload()

		dir := XDGConfigDir()
		if err := os.MkdirAll(dir, 0750); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("sites:\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(""); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})
}

// TestApplySite tests merging per-site overrides into a Config.
func TestApplySite(t *testing.T) {
	t.Parallel()

	t.Run("overrides matching host only", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.StartURL = "https://linguistics.osu.edu/people"

		cf := &File{Sites: map[string]SiteConfig{
			"linguistics.osu.edu": {
				Delay:    5,
				MaxPages: 7,
			},
			"other.example.edu": {
				Delay: 1,
			},
		}}

		cfg.ApplySite(cf)

		if cfg.CrawlDelay != 5*time.Second {
			t.Errorf("expected overridden delay, got %v", cfg.CrawlDelay)
		}
		if cfg.MaxPages != 7 {
			t.Errorf("expected overridden max pages, got %d", cfg.MaxPages)
		}
		// Unset fields keep defaults.
		if cfg.PeoplePath != DefaultPeoplePath {
			t.Errorf("expected default people path, got %q", cfg.PeoplePath)
		}
	})

	t.Run("no matching host leaves config untouched", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cf := &File{Sites: map[string]SiteConfig{"nowhere.example": {MaxPages: 1}}}
		cfg.ApplySite(cf)

		if cfg.MaxPages != DefaultMaxPages {
			t.Errorf("expected default max pages, got %d", cfg.MaxPages)
		}
	})
}
