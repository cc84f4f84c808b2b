package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Default selectors for the target directory's profile pages.
// The bio-* classes come from the university CMS's profile template.
const (
	defaultNameContainer      = "div.bio-top-left"
	defaultBioContainer       = "div.bio-btm-left"
	defaultExpertiseContainer = "div.bio-exp"
)

// expertiseLabel prefixes the areas-of-expertise summary in the biography.
const expertiseLabel = "Areas of Expertise: "

// defaultFallbackSelectors are tried in order when the primary containers
// are absent. The first selector yielding text wins; the result carries
// biography text only, no name.
var defaultFallbackSelectors = []string{
	".biography p",
	".about p",
	".profile-description p",
	".faculty-bio p",
	`div[class*="bio"] p`,
	`div[class*="about"] p`,
}

// ProfileContent is the unified result of parsing a profile page.
//
// Design decision: one result shape for both the primary and fallback
// parse paths. The fallback path simply leaves Name empty; callers never
// branch on result shape. A page with no recognizable content at all
// yields a nil *ProfileContent, not an error.
type ProfileContent struct {
	// Name is the display name, empty when only biography text was found.
	Name string

	// About is the biography text, empty when only a name was found.
	About string
}

// ProfileParser extracts profile content from HTML pages.
type ProfileParser struct {
	nameContainer      string
	bioContainer       string
	expertiseContainer string
	fallbacks          []string
}

// ParserOption configures a ProfileParser.
type ParserOption func(*ProfileParser)

// WithNameContainer overrides the selector for the name header region.
func WithNameContainer(sel string) ParserOption {
	return func(p *ProfileParser) {
		p.nameContainer = sel
	}
}

// WithBioContainer overrides the selector for the biography region.
func WithBioContainer(sel string) ParserOption {
	return func(p *ProfileParser) {
		p.bioContainer = sel
	}
}

// WithExpertiseContainer overrides the selector for the areas-of-expertise
// region.
func WithExpertiseContainer(sel string) ParserOption {
	return func(p *ProfileParser) {
		p.expertiseContainer = sel
	}
}

// WithFallbackSelectors overrides the ordered fallback selector list.
func WithFallbackSelectors(sels []string) ParserOption {
	return func(p *ProfileParser) {
		p.fallbacks = sels
	}
}

// NewProfileParser creates a ProfileParser with the built-in selectors,
// optionally overridden per site.
func NewProfileParser(opts ...ParserOption) *ProfileParser {
	p := &ProfileParser{
		nameContainer:      defaultNameContainer,
		bioContainer:       defaultBioContainer,
		expertiseContainer: defaultExpertiseContainer,
		fallbacks:          defaultFallbackSelectors,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ParseProfile extracts name and biography from a profile page.
//
// Primary path: the name comes from the first h1 inside the name
// container; the biography is the concatenated paragraphs of the bio
// container, with a labeled areas-of-expertise summary prepended when that
// region is present. A name container without an inner h1 produces an
// absent-name record rather than failing the page.
//
// Fallback path: when the primary path yields nothing, the fallback
// selectors are tried in order and the first non-blank text becomes the
// biography.
//
// Returns (nil, nil) when no content is found at all. A parse error is
// returned only when the page is not parseable as HTML at all.
func (p *ProfileParser) ParseProfile(pageText string) (*ProfileContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		return nil, err
	}

	name := cleanText(doc.Find(p.nameContainer).First().Find("h1").First().Text())

	var parts []string

	// Areas of expertise, summarized ahead of the biography proper.
	doc.Find(p.expertiseContainer).Find("ul").Each(func(_ int, ul *goquery.Selection) {
		if text := cleanText(ul.Text()); text != "" {
			parts = append(parts, expertiseLabel+text)
		}
	})

	doc.Find(p.bioContainer).Find("p").Each(func(_ int, para *goquery.Selection) {
		if text := cleanText(para.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	if len(parts) > 0 || name != "" {
		return &ProfileContent{
			Name:  name,
			About: strings.Join(parts, " "),
		}, nil
	}

	// Fallback selectors for sites without the expected containers.
	for _, sel := range p.fallbacks {
		if text := cleanText(doc.Find(sel).First().Text()); text != "" {
			return &ProfileContent{About: text}, nil
		}
	}

	return nil, nil
}

// cleanText NFC-normalizes s and collapses all runs of whitespace to
// single spaces. CMS markup pads text with non-breaking spaces and
// newlines that would otherwise leak into the stored biography.
func cleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
