package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".buckeyebrains"

// EnvDatabaseURL is the environment variable holding the document store
// connection string.
const EnvDatabaseURL = "DATABASE_URL"

// envFiles are checked in preference order; the first one that exists is
// loaded and the rest are ignored.
var envFiles = []string{".env.local", ".env"}

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadEnvFiles loads environment variables from the first env file that
// exists (.env.local, then .env). Returns the file loaded, or empty string
// when none exists. Variables already present in the environment are not
// overridden, matching dotenv semantics.
func LoadEnvFiles() (string, error) {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return "", err
		}
		return name, nil
	}
	return "", nil
}

// LoadConfigFile loads site configurations from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that matters based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file:
// 1. If configPath is specified, use it directly
// 2. Look for .buckeyebrains in the current directory
// 3. Look for .buckeyebrains in the user's home directory
// 4. Look for .buckeyebrains in the XDG config directory
//
// Returns the path if found, or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

// ApplySite merges the per-site overrides for the host of c.StartURL into c.
// Unset override fields leave the current value in place.
func (c *Config) ApplySite(cf *File) {
	u, err := url.Parse(c.StartURL)
	if err != nil {
		return
	}
	sc, ok := cf.Lookup(u.Hostname())
	if !ok {
		return
	}

	if sc.PeoplePath != "" {
		c.PeoplePath = sc.PeoplePath
	}
	if sc.Delay > 0 {
		c.CrawlDelay = time.Duration(sc.Delay) * time.Second
	}
	if sc.MaxPages > 0 {
		c.MaxPages = sc.MaxPages
	}
	if sc.Selectors.NameContainer != "" {
		c.Selectors.NameContainer = sc.Selectors.NameContainer
	}
	if sc.Selectors.BioContainer != "" {
		c.Selectors.BioContainer = sc.Selectors.BioContainer
	}
	if sc.Selectors.ExpertiseContainer != "" {
		c.Selectors.ExpertiseContainer = sc.Selectors.ExpertiseContainer
	}
	if len(sc.Selectors.Fallbacks) > 0 {
		c.Selectors.Fallbacks = sc.Selectors.Fallbacks
	}
}
