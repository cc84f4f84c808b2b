package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nimaibhat/BuckeyeBrains/internal/model"
)

// FileStore persists profiles as a pretty-printed JSON array.
//
// The whole accumulated list is loaded at construction for in-memory
// existence checks and rewritten wholesale on every successful save; there
// is no incremental append. This matches the artifact format: one
// human-readable faculty_profiles.json a person can open in an editor.
type FileStore struct {
	path    string
	records []model.ProfileRecord

	// index maps profile paths to their presence for O(1) Exists checks
	// over what is otherwise a linear scan.
	index map[string]bool
}

// OpenFileStore opens the JSON store at path, loading any existing
// records. A missing file is an empty store, not an error.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path:    path,
		records: make([]model.ProfileRecord, 0),
		index:   make(map[string]bool),
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided store path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("read profile store %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &fs.records); err != nil {
			return nil, fmt.Errorf("parse profile store %s: %w", path, err)
		}
	}

	for i := range fs.records {
		fs.index[fs.records[i].ProfilePath] = true
	}

	return fs, nil
}

// Path returns the file the store writes to.
func (fs *FileStore) Path() string {
	return fs.path
}

// Exists reports whether a record with the given profile path is stored.
func (fs *FileStore) Exists(_ context.Context, profilePath string) (bool, error) {
	return fs.index[profilePath], nil
}

// Save appends the records to the in-memory list and rewrites the file.
// An empty slice performs no write.
func (fs *FileStore) Save(_ context.Context, records []model.ProfileRecord) error {
	if len(records) == 0 {
		return nil
	}

	fs.records = append(fs.records, records...)
	for i := range records {
		fs.index[records[i].ProfilePath] = true
	}

	data, err := json.MarshalIndent(fs.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile store: %w", err)
	}

	if err := os.WriteFile(fs.path, data, 0600); err != nil {
		return fmt.Errorf("write profile store %s: %w", fs.path, err)
	}

	return nil
}

// All returns a copy of every stored record.
func (fs *FileStore) All(_ context.Context) ([]model.ProfileRecord, error) {
	out := make([]model.ProfileRecord, len(fs.records))
	copy(out, fs.records)
	return out, nil
}

// Close is a no-op for the file store.
func (fs *FileStore) Close() error {
	return nil
}
