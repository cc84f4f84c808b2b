package qa

import (
	"context"
	"math"
	"runtime"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/nimaibhat/BuckeyeBrains/internal/model"
)

// DefaultTopK is the default number of profiles returned per question.
const DefaultTopK = 3

// stopwords are dropped during tokenization. A short list is enough;
// anything longer starts eating domain terms.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true,
	"he": true, "her": true, "his": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "she": true,
	"that": true, "the": true, "their": true, "they": true, "this": true,
	"to": true, "was": true, "who": true, "with": true,
}

// Result is one retrieved profile with its similarity score.
type Result struct {
	// Record is the matched profile.
	Record model.ProfileRecord

	// Score is the cosine similarity in (0, 1].
	Score float64
}

// document is one indexed profile with its term weight vector.
type document struct {
	record  model.ProfileRecord
	weights map[string]float64
	norm    float64
}

// Index is an in-memory TF-IDF index over profile records.
// Build once, then Search any number of times. An Index is read-only
// after construction and safe for concurrent searches.
type Index struct {
	docs []document

	// idf maps terms to their inverse document frequency.
	idf map[string]float64
}

// Build constructs an index over the given records.
// Tokenization runs in parallel, bounded by the CPU count; term weighting
// is a cheap serial pass afterwards.
func Build(ctx context.Context, records []model.ProfileRecord) (*Index, error) {
	counts := make([]map[string]int, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range records {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			counts[i] = termCounts(indexText(&records[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Document frequencies.
	df := make(map[string]int)
	for _, c := range counts {
		for term := range c {
			df[term]++
		}
	}

	idx := &Index{
		docs: make([]document, 0, len(records)),
		idf:  make(map[string]float64, len(df)),
	}

	n := float64(len(records))
	for term, f := range df {
		idx.idf[term] = math.Log(1 + n/float64(f))
	}

	for i := range records {
		doc := document{
			record:  records[i],
			weights: make(map[string]float64, len(counts[i])),
		}
		for term, c := range counts[i] {
			w := (1 + math.Log(float64(c))) * idx.idf[term]
			doc.weights[term] = w
			doc.norm += w * w
		}
		doc.norm = math.Sqrt(doc.norm)
		idx.docs = append(idx.docs, doc)
	}

	return idx, nil
}

// Len returns the number of indexed profiles.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Search returns the k most similar profiles to the question, best first.
// Profiles with zero overlap are never returned, so the result may be
// shorter than k. k values below 1 fall back to DefaultTopK.
func (idx *Index) Search(question string, k int) []Result {
	if k < 1 {
		k = DefaultTopK
	}

	qCounts := termCounts(question)
	if len(qCounts) == 0 {
		return nil
	}

	qWeights := make(map[string]float64, len(qCounts))
	var qNorm float64
	for term, c := range qCounts {
		w := (1 + math.Log(float64(c))) * idx.idf[term]
		qWeights[term] = w
		qNorm += w * w
	}
	qNorm = math.Sqrt(qNorm)
	if qNorm == 0 {
		return nil
	}

	results := make([]Result, 0, len(idx.docs))
	for i := range idx.docs {
		doc := &idx.docs[i]
		if doc.norm == 0 {
			continue
		}

		var dot float64
		for term, qw := range qWeights {
			if dw, ok := doc.weights[term]; ok {
				dot += qw * dw
			}
		}
		if dot <= 0 {
			continue
		}

		results = append(results, Result{
			Record: doc.record,
			Score:  dot / (qNorm * doc.norm),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// indexText builds the searchable text for a record, mirroring the shape
// the profiles are presented in: the name plus the biography.
func indexText(r *model.ProfileRecord) string {
	return r.DisplayName() + " " + r.AboutMe
}

// termCounts tokenizes text into lowercase word counts, dropping
// stopwords and single characters.
func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len(w) < 2 || stopwords[w] {
			continue
		}
		counts[w]++
	}
	return counts
}
