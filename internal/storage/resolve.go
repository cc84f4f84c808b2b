package storage

import (
	"context"
	"log/slog"

	"github.com/nimaibhat/BuckeyeBrains/internal/model"
)

// localCandidateDSNs are tried in order when no connection string is
// configured, covering the usual local database setups.
var localCandidateDSNs = []string{
	"postgres://localhost:5432/faculty?sslmode=disable",
	"postgres://127.0.0.1:5432/faculty?sslmode=disable",
	"postgres://localhost:5432/postgres?sslmode=disable",
}

// Resolve selects the storage backend for a run.
//
// When dsn is set it is tried first; otherwise the well-known local
// addresses are tried in order. The first database that answers a ping
// becomes the primary of a Fallback over the file store at filePath. When
// nothing connects, the file store is used directly.
//
// The returned mode reflects the backend the run starts with; a later
// write failure may still downgrade a database-backed Fallback.
func Resolve(ctx context.Context, dsn, filePath string, logger *slog.Logger) (ProfileStore, model.StorageMode, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fileStore, err := OpenFileStore(filePath)
	if err != nil {
		return nil, "", err
	}

	candidates := localCandidateDSNs
	if dsn != "" {
		candidates = []string{dsn}
	}

	for _, candidate := range candidates {
		logger.Info("trying database", "dsn", candidate)
		pg, err := OpenPostgres(ctx, candidate)
		if err != nil {
			logger.Warn("database connection failed", "dsn", candidate, "error", err)
			continue
		}
		logger.Info("connected to database", "dsn", candidate)
		return NewFallback(pg, fileStore, logger), model.StorageModeDatabase, nil
	}

	logger.Info("no database available, using file storage", "path", filePath)
	return fileStore, model.StorageModeFile, nil
}
