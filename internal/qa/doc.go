// Package qa provides lexical retrieval over scraped faculty profiles.
//
// The ask command builds an in-memory TF-IDF index over every stored
// profile's name and biography text, then answers free-text questions by
// cosine similarity, returning the top-k matching profiles as sources.
//
// Design decision: retrieval is lexical, not embedding-based. The corpus
// is a few hundred short biographies; TF-IDF over that scale answers
// "who works on phonology"-style questions without shipping a model, and
// the index rebuilds from storage in milliseconds on every run.
package qa
