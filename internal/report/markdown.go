package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// aboutPreviewLen bounds the biography excerpt shown in the profile table.
const aboutPreviewLen = 80

// MarkdownWriter renders exports as GitHub Flavored Markdown.
//
// Design decision: the nao1215/markdown library gives type-safe tables
// and headings instead of hand-concatenated strings, and its Build step
// surfaces write errors in one place.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the export as a Markdown document.
func (w *MarkdownWriter) Write(export *Export) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, export)
	w.writeProfiles(md, export)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, export *Export) {
	md.H1("Faculty Profiles")
	md.PlainText("")

	withAbout := export.WithAboutCount()
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", export.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Source", "`" + export.Source + "`"},
			{"Profiles", strconv.Itoa(len(export.Profiles))},
			{"With biography", strconv.Itoa(withAbout)},
			{"Without biography", strconv.Itoa(len(export.Profiles) - withAbout)},
		},
	})
	md.PlainText("")
}

// writeProfiles writes one table row per profile.
func (w *MarkdownWriter) writeProfiles(md *markdown.Markdown, export *Export) {
	if len(export.Profiles) == 0 {
		md.PlainText("No profiles stored.")
		return
	}

	md.H2("Profiles")
	md.PlainText("")

	rows := make([][]string, 0, len(export.Profiles))
	for i := range export.Profiles {
		p := &export.Profiles[i]
		rows = append(rows, []string{
			p.DisplayName(),
			"[profile](" + p.ProfileURL + ")",
			previewText(p.AboutMe),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Name", "Link", "About"},
		Rows:   rows,
	})
}

// previewText truncates biography text for table display.
func previewText(s string) string {
	if s == "" {
		return "_no about me section_"
	}
	if len(s) <= aboutPreviewLen {
		return s
	}
	return s[:aboutPreviewLen] + "…"
}
