package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"github.com/nimaibhat/BuckeyeBrains/internal/model"
)

// pingTimeout bounds the connectivity check when opening or probing a
// database.
const pingTimeout = 5 * time.Second

// PostgresStore persists profiles in a Postgres table.
//
// The table mirrors the document schema: one row per profile with
// profile_path, profile_url, full_name, about_me. No uniqueness constraint
// is declared; de-duplication happens in the application via Exists.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to the database at dsn, verifies connectivity with
// a bounded ping, and ensures the profiles table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create profiles table: %w", err)
	}

	return store, nil
}

// createTable creates the profiles table if it doesn't exist.
func (s *PostgresStore) createTable(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id SERIAL PRIMARY KEY,
		profile_path TEXT NOT NULL,
		profile_url TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		about_me TEXT NOT NULL DEFAULT '',
		scraped_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_path ON profiles(profile_path);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Exists performs a single point lookup by profile path.
func (s *PostgresStore) Exists(ctx context.Context, profilePath string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM profiles WHERE profile_path = $1 LIMIT 1`, profilePath).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("existence check for %s: %w", profilePath, err)
	}
	return true, nil
}

// Save bulk-inserts the records in a single transaction.
// An empty slice performs no write.
func (s *PostgresStore) Save(ctx context.Context, records []model.ProfileRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO profiles (profile_path, profile_url, full_name, about_me) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if _, err := stmt.ExecContext(ctx, r.ProfilePath, r.ProfileURL, r.FullName, r.AboutMe); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert profile %s: %w", r.ProfilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit inserts: %w", err)
	}
	return nil
}

// All returns every stored record in insertion order.
func (s *PostgresStore) All(ctx context.Context) ([]model.ProfileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile_path, profile_url, full_name, about_me FROM profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var records []model.ProfileRecord
	for rows.Next() {
		var r model.ProfileRecord
		if err := rows.Scan(&r.ProfilePath, &r.ProfileURL, &r.FullName, &r.AboutMe); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
