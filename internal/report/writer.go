package report

import (
	"io"
	"time"

	"github.com/nimaibhat/BuckeyeBrains/internal/model"
)

// Export is the payload rendered by report writers.
type Export struct {
	// GeneratedAt is when the export was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// Source describes where the profiles came from (database or the
	// file store path).
	Source string `json:"source"`

	// Profiles are the exported records, in storage order.
	Profiles []model.ProfileRecord `json:"profiles"`
}

// NewExport creates an Export over the given profiles.
func NewExport(source string, profiles []model.ProfileRecord) *Export {
	return &Export{
		GeneratedAt: time.Now(),
		Source:      source,
		Profiles:    profiles,
	}
}

// WithAboutCount returns how many exported profiles carry biography text.
func (e *Export) WithAboutCount() int {
	n := 0
	for i := range e.Profiles {
		if e.Profiles[i].HasAbout() {
			n++
		}
	}
	return n
}

// Writer renders an Export to a destination.
//
// Design decision: an interface so output format and destination vary
// independently; the export command composes a writer over stdout or a
// file without either side knowing about the other.
type Writer interface {
	// Write renders the export. Returns the number of bytes written.
	Write(export *Export) (int, error)
}

// baseWriter provides the shared output destination for writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
