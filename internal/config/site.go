package config

// Selectors are the CSS selectors the profile parser uses.
// Zero-valued fields mean "use the built-in selector", so a config file
// only needs to name what differs on the target site.
type Selectors struct {
	// NameContainer selects the header region holding the display name.
	// The name itself is taken from the first h1 inside it.
	NameContainer string `yaml:"name_container"`

	// BioContainer selects the region(s) whose paragraphs form the
	// biography text.
	BioContainer string `yaml:"bio_container"`

	// ExpertiseContainer selects the region holding the areas-of-expertise
	// lists, summarized and prepended to the biography when present.
	ExpertiseContainer string `yaml:"expertise_container"`

	// Fallbacks are tried in order when none of the primary containers
	// match; the first selector yielding text wins. The result carries
	// biography text only, no name.
	Fallbacks []string `yaml:"fallbacks"`
}

// SiteConfig holds per-site overrides from the configuration file, keyed
// by the host of the start URL.
type SiteConfig struct {
	// PeoplePath overrides the path segment identifying profile links.
	PeoplePath string `yaml:"people_path"`

	// Delay overrides the politeness delay, in seconds.
	Delay int `yaml:"delay"`

	// MaxPages overrides the directory page cap.
	MaxPages int `yaml:"max_pages"`

	// Selectors override the parser's CSS selectors.
	Selectors Selectors `yaml:"selectors"`
}

// File is the parsed .buckeyebrains configuration file.
type File struct {
	// Sites maps a hostname to its overrides.
	Sites map[string]SiteConfig `yaml:"sites"`
}

// Lookup returns the site configuration for host and whether one exists.
func (f *File) Lookup(host string) (SiteConfig, bool) {
	if f == nil || f.Sites == nil {
		return SiteConfig{}, false
	}
	sc, ok := f.Sites[host]
	return sc, ok
}
