// Package cmd provides common initialization for the clipline binaries.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clipline/clipline/pkg/persistence"
	"github.com/clipline/clipline/pkg/persistence/file"
	"github.com/clipline/clipline/pkg/persistence/postgresql"
	"github.com/clipline/clipline/pkg/persistence/redis"
)

// NewPersistence selects the storage backend by URL scheme: postgres:// or
// postgresql:// for PostgreSQL, anything else for file storage.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"),
		strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgresql persistence: %w", err)
		}

		return p, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

// WithRowStore overrides the backend's row repository with a redis-backed
// one when redisURL is set. Monitoring rows are hot compared to the rest of
// the data, so they can live on a faster store than the workflow documents.
func WithRowStore(p persistence.Persistence, redisURL string) (persistence.Persistence, error) {
	if redisURL == "" {
		return p, nil
	}

	rows, err := redis.NewRowRepositoryFromURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis row store: %w", err)
	}

	return &rowStorePersistence{Persistence: p, rows: rows}, nil
}

type rowStorePersistence struct {
	persistence.Persistence

	rows *redis.RowRepository
}

func (p *rowStorePersistence) RowRepository() persistence.RowRepository {
	return p.rows
}

func (p *rowStorePersistence) HealthCheck(ctx context.Context) error {
	if err := p.rows.Ping(ctx); err != nil {
		return fmt.Errorf("row store unavailable: %w", err)
	}

	return p.Persistence.HealthCheck(ctx)
}

func (p *rowStorePersistence) Close(ctx context.Context) error {
	if err := p.rows.Close(); err != nil {
		return fmt.Errorf("failed to close row store: %w", err)
	}

	return p.Persistence.Close(ctx)
}
