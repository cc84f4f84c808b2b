package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxGuessedPages bounds the page-number guessing fallback per naming
// convention.
const maxGuessedPages = 50

// structuralPaginationSelectors match the pagination widgets seen across
// common CMS themes. Matches from every selector are unioned.
var structuralPaginationSelectors = []string{
	`a[rel="next"]`,
	".pagination a",
	".pager a",
	".page-numbers a",
	".pagination-next a",
}

// pageNumberPattern matches hrefs carrying an explicit page number in
// either query-parameter or path-segment style.
var pageNumberPattern = regexp.MustCompile(`page=\d+|p=\d+|/page/\d+`)

// nextLinkTexts are anchor texts treated as "next page" links.
var nextLinkTexts = map[string]bool{
	"next": true,
	">":    true,
}

// LinkDiscoverer scans directory pages for people-links and pagination
// links.
//
// People-links are anchors whose target contains the directory's people
// path segment, resolved absolute against the crawl's base URL. Pagination
// links are the union of structural, textual, and numeric-pattern matches,
// resolved against the page they were found on.
type LinkDiscoverer struct {
	// baseURL is the crawl's configured base, used to resolve people-links.
	baseURL *url.URL

	// peoplePath is the path segment identifying a profile link.
	peoplePath string
}

// NewLinkDiscoverer creates a discoverer for the given base URL and people
// path segment.
func NewLinkDiscoverer(baseURL, peoplePath string) (*LinkDiscoverer, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	return &LinkDiscoverer{baseURL: u, peoplePath: peoplePath}, nil
}

// DiscoverLinks returns the profile URLs and pagination URLs found on a
// directory page. Profile URLs keep document order and are de-duplicated;
// pagination URLs are a set (order not significant, first-seen order kept
// for determinism).
func (d *LinkDiscoverer) DiscoverLinks(pageText, currentURL string) (profileURLs, paginationURLs []string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		return nil, nil, err
	}

	current, err := url.Parse(currentURL)
	if err != nil {
		current = d.baseURL
	}

	profileURLs = d.findProfileLinks(doc)
	paginationURLs = d.findPaginationLinks(doc, current)
	return profileURLs, paginationURLs, nil
}

// findProfileLinks collects anchors whose href contains the people path
// segment, resolved against the base URL.
func (d *LinkDiscoverer) findProfileLinks(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, d.peoplePath) {
			return
		}
		resolved := resolveHref(d.baseURL, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links
}

// findPaginationLinks collects next-page style links: structural selector
// matches, anchors with "Next"-like text, and hrefs carrying explicit page
// numbers. The result is de-duplicated.
func (d *LinkDiscoverer) findPaginationLinks(doc *goquery.Document, current *url.URL) []string {
	seen := make(map[string]bool)
	links := make([]string, 0)

	add := func(href string) {
		resolved := resolveHref(current, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	}

	for _, sel := range structuralPaginationSelectors {
		doc.Find(sel).Each(func(_ int, a *goquery.Selection) {
			if href, ok := a.Attr("href"); ok {
				add(href)
			}
		})
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		if nextLinkTexts[text] || pageNumberPattern.MatchString(href) {
			add(href)
		}
	})

	return links
}

// GuessPaginationURLs synthesizes page URLs for common pagination naming
// conventions. It is the manual fallback when structural discovery finds
// nothing: callers fetch the guesses in order and stop at the first page
// yielding no profiles.
func GuessPaginationURLs(rawURL string) []string {
	guesses := make([]string, 0, maxGuessedPages*4)

	if base, params, ok := strings.Cut(rawURL, "?"); ok {
		// Query-parameter style: extend the existing parameters.
		for n := 1; n <= maxGuessedPages; n++ {
			guesses = append(guesses,
				fmt.Sprintf("%s?%s&page=%d", base, params, n),
				fmt.Sprintf("%s?%s&p=%d", base, params, n),
			)
		}
		return guesses
	}

	for n := 1; n <= maxGuessedPages; n++ {
		guesses = append(guesses,
			fmt.Sprintf("%s/page/%d", rawURL, n),
			fmt.Sprintf("%s/p/%d", rawURL, n),
			fmt.Sprintf("%s?page=%d", rawURL, n),
			fmt.Sprintf("%s?p=%d", rawURL, n),
		)
	}
	return guesses
}

// resolveHref resolves href against base, dropping javascript:, mailto:,
// tel:, data: and bare-fragment links.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
