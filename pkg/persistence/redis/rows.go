// Package redis provides a Redis-backed row store. Rows are hashes keyed by
// workflow ID, which makes the partial-field upsert contract a native HSet.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
)

const rowKeyPrefix = "clipline:rows:"

// RowRepository implements persistence.RowRepository on Redis hashes.
type RowRepository struct {
	client goredis.UniversalClient
}

// NewRowRepository connects to Redis using the given URL.
func NewRowRepository(addr, password string, db int) *RowRepository {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RowRepository{client: client}
}

// NewRowRepositoryFromURL connects using a redis:// URL.
func NewRowRepositoryFromURL(url string) (*RowRepository, error) {
	options, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &RowRepository{client: goredis.NewClient(options)}, nil
}

// NewRowRepositoryWithClient wraps an existing client (used in tests).
func NewRowRepositoryWithClient(client goredis.UniversalClient) *RowRepository {
	return &RowRepository{client: client}
}

// Ping verifies connectivity.
func (rr *RowRepository) Ping(ctx context.Context) error {
	return rr.client.Ping(ctx).Err()
}

// Close releases the client.
func (rr *RowRepository) Close() error {
	return rr.client.Close()
}

// Upsert writes only the listed fields into the row hash.
func (rr *RowRepository) Upsert(ctx context.Context, id string, fields map[string]any) error {
	// Validate against the documented field set before touching Redis.
	if err := persistence.ApplyRowFields(&models.WorkflowRow{}, fields); err != nil {
		return err
	}

	values := make(map[string]any, len(fields)+1)
	for name, value := range fields {
		if rs, ok := value.(models.RowStatus); ok {
			value = string(rs)
		}

		values[name] = value
	}

	values["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	err := rr.client.HSet(ctx, rowKeyPrefix+id, values).Err()
	if err != nil {
		return fmt.Errorf("failed to upsert row %s: %w", id, err)
	}

	return nil
}

// Get reads the full row hash.
func (rr *RowRepository) Get(ctx context.Context, id string) (*models.WorkflowRow, error) {
	values, err := rr.client.HGetAll(ctx, rowKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch row %s: %w", id, err)
	}

	if len(values) == 0 {
		return nil, persistence.ErrRowNotFound
	}

	row := &models.WorkflowRow{
		ID:       id,
		Status:   models.RowStatus(values[persistence.RowFieldStatus]),
		VideoRef: values[persistence.RowFieldVideoRef],
		Error:    values[persistence.RowFieldError],
	}

	if raw, ok := values[persistence.RowFieldProgress]; ok {
		progress, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse progress for row %s: %w", id, err)
		}

		row.Progress = progress
	}

	if raw, ok := values["updated_at"]; ok {
		updatedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err == nil {
			row.UpdatedAt = updatedAt
		}
	}

	return row, nil
}
