package model

import "strings"

// ProfileRecord is one scraped faculty profile.
//
// ProfilePath is the identifier used for de-duplication: a record is
// persisted at most once per path, and existence checks run against it.
// Records are immutable once created; this system never updates or deletes
// them.
//
// The JSON field names match the persisted document schema, so the same
// struct serves the file store, the database rows, and report output.
type ProfileRecord struct {
	// ProfilePath identifies the profile for de-duplication.
	// It is the resolved URL of the profile's detail page.
	ProfilePath string `json:"profile_path"`

	// ProfileURL is the fully resolved URL of the profile page.
	ProfileURL string `json:"profile_url"`

	// FullName is the person's display name. May be empty when the
	// profile page provided biography text but no recognizable heading.
	FullName string `json:"full_name"`

	// AboutMe is the free-text biography. May be empty when only a name
	// was found.
	AboutMe string `json:"about_me"`
}

// HasAbout reports whether the record carries non-blank biography text.
func (p *ProfileRecord) HasAbout() bool {
	return strings.TrimSpace(p.AboutMe) != ""
}

// DisplayName returns the full name, or a placeholder when the name is
// unknown. Used by report writers and the interactive answer loop.
func (p *ProfileRecord) DisplayName() string {
	if strings.TrimSpace(p.FullName) == "" {
		return "Unknown"
	}
	return p.FullName
}
