package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// fileName is the cache database file inside the cache directory.
const fileName = "pagecache.db"

// Cache is the SQLite-backed page fetch cache.
type Cache struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Cache behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended.
	EnableWAL bool
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the cache database in dir.
func Open(dir string, opts Options) (*Cache, error) {
	dbPath := filepath.Join(dir, fileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("cache not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	c := &Cache{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := c.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// createTables creates the cache schema if it doesn't exist.
func (c *Cache) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		content_hash TEXT NOT NULL,
		snapshot TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_fetched_at ON fetches(fetched_at);
	`

	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// RecordFetch stores the body fetched for url, replacing any earlier
// snapshot of the same page. When the body is unchanged since the last
// fetch only the freshness timestamp is bumped, not the snapshot row.
func (c *Cache) RecordFetch(ctx context.Context, url, body string) error {
	sum := sha256.Sum256([]byte(body))
	hash := hex.EncodeToString(sum[:])

	stored, err := c.ContentHash(ctx, url)
	if err != nil {
		return err
	}
	if stored == hash {
		if _, err := c.db.ExecContext(ctx,
			`UPDATE fetches SET fetched_at = CURRENT_TIMESTAMP WHERE url = ?`, url); err != nil {
			return fmt.Errorf("failed to record fetch: %w", err)
		}
		return nil
	}

	query := `
	INSERT INTO fetches (url, content_hash, snapshot)
	VALUES (?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		content_hash = excluded.content_hash,
		snapshot = excluded.snapshot,
		fetched_at = CURRENT_TIMESTAMP
	`

	if _, err := c.db.ExecContext(ctx, query, url, hash, body); err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}

// FreshSnapshot returns the cached body for url when it was fetched within
// window, and whether such a snapshot exists.
func (c *Cache) FreshSnapshot(ctx context.Context, url string, window time.Duration) (string, bool, error) {
	query := `
	SELECT snapshot FROM fetches
	WHERE url = ? AND fetched_at > datetime('now', ?)
	`

	// SQLite datetime modifier format.
	modifier := fmt.Sprintf("-%d seconds", int(window.Seconds()))

	var snapshot string
	err := c.db.QueryRowContext(ctx, query, url, modifier).Scan(&snapshot)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to check cache: %w", err)
	}

	return snapshot, true, nil
}

// ContentHash returns the stored content hash for url, or empty when the
// page has never been fetched. Lets callers detect content changes across
// runs without re-reading the snapshot.
func (c *Cache) ContentHash(ctx context.Context, url string) (string, error) {
	var hash string
	err := c.db.QueryRowContext(ctx,
		`SELECT content_hash FROM fetches WHERE url = ?`, url).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read content hash: %w", err)
	}
	return hash, nil
}

// Purge removes snapshots older than the given age and returns how many
// rows were deleted.
func (c *Cache) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	modifier := fmt.Sprintf("-%d seconds", int(olderThan.Seconds()))

	result, err := c.db.ExecContext(ctx,
		`DELETE FROM fetches WHERE fetched_at <= datetime('now', ?)`, modifier)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return result.RowsAffected()
}
