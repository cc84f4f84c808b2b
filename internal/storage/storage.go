package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nimaibhat/BuckeyeBrains/internal/model"
)

// ProfileStore is the persistence sink for scraped profiles.
//
// Implementations must make Save of an empty slice a no-op and must leave
// Exists purely application-level: no store enforces uniqueness itself.
type ProfileStore interface {
	// Exists reports whether a record with the given profile path is
	// already stored.
	Exists(ctx context.Context, profilePath string) (bool, error)

	// Save persists the records. An empty slice performs no write.
	Save(ctx context.Context, records []model.ProfileRecord) error

	// All returns every stored record. Used by the ask and export
	// commands, not by the crawl itself.
	All(ctx context.Context) ([]model.ProfileRecord, error)

	// Close releases the backend's resources.
	Close() error
}

// Fallback wraps a primary (database) store and a secondary (file) store.
//
// All operations go to the primary until a Save against it fails; then the
// wrapper logs the failure, permanently switches to the secondary, and
// retries the failed batch against it exactly once. Once downgraded, the
// primary is never attempted again for the lifetime of the instance.
type Fallback struct {
	mu         sync.Mutex
	primary    ProfileStore
	secondary  ProfileStore
	downgraded bool
	logger     *slog.Logger
}

// NewFallback creates a Fallback over primary and secondary stores.
// If logger is nil, slog.Default() is used.
func NewFallback(primary, secondary ProfileStore, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// active returns the store currently in use.
func (f *Fallback) active() ProfileStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downgraded {
		return f.secondary
	}
	return f.primary
}

// Downgraded reports whether the instance has switched to the secondary
// store.
func (f *Fallback) Downgraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downgraded
}

// Exists queries the active backend.
func (f *Fallback) Exists(ctx context.Context, profilePath string) (bool, error) {
	return f.active().Exists(ctx, profilePath)
}

// Save writes the records to the active backend. A primary failure
// triggers the one-time downgrade and a single retry against the
// secondary.
func (f *Fallback) Save(ctx context.Context, records []model.ProfileRecord) error {
	if len(records) == 0 {
		return nil
	}

	f.mu.Lock()
	if f.downgraded {
		f.mu.Unlock()
		return f.secondary.Save(ctx, records)
	}
	f.mu.Unlock()

	err := f.primary.Save(ctx, records)
	if err == nil {
		return nil
	}

	f.logger.Error("database save failed, falling back to file storage", "error", err)

	f.mu.Lock()
	f.downgraded = true
	f.mu.Unlock()

	return f.secondary.Save(ctx, records)
}

// All reads every record from the active backend.
func (f *Fallback) All(ctx context.Context) ([]model.ProfileRecord, error) {
	return f.active().All(ctx)
}

// Close closes both backends; the first error wins.
func (f *Fallback) Close() error {
	err := f.primary.Close()
	if cerr := f.secondary.Close(); err == nil {
		err = cerr
	}
	return err
}
