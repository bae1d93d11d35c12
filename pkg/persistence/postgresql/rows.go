package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
)

// RowRepository stores monitoring rows in PostgreSQL.
type RowRepository struct {
	db *sql.DB
}

// Get retrieves a monitoring row by ID.
func (rr *RowRepository) Get(ctx context.Context, id string) (*models.WorkflowRow, error) {
	row := &models.WorkflowRow{ID: id}

	var status string

	err := rr.db.QueryRowContext(ctx,
		"SELECT status, progress, video_ref, error, updated_at FROM workflow_rows WHERE id = $1", id).
		Scan(&status, &row.Progress, &row.VideoRef, &row.Error, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrRowNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query row %s: %w", id, err)
	}

	row.Status = models.RowStatus(status)

	return row, nil
}

// Upsert creates or partially updates a row inside one transaction, so
// concurrent writers cannot interleave a read-modify-write.
func (rr *RowRepository) Upsert(ctx context.Context, id string, fields map[string]any) error {
	tx, err := rr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin row upsert for %s: %w", id, err)
	}

	row := &models.WorkflowRow{ID: id}

	var status string

	err = tx.QueryRowContext(ctx,
		"SELECT status, progress, video_ref, error FROM workflow_rows WHERE id = $1 FOR UPDATE", id).
		Scan(&status, &row.Progress, &row.VideoRef, &row.Error)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()

		return fmt.Errorf("failed to read row %s: %w", id, err)
	}

	row.Status = models.RowStatus(status)

	if err := persistence.ApplyRowFields(row, fields); err != nil {
		_ = tx.Rollback()

		return err
	}

	query := `
		INSERT INTO workflow_rows (id, status, progress, video_ref, error, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			progress = EXCLUDED.progress,
			video_ref = EXCLUDED.video_ref,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`

	_, err = tx.ExecContext(ctx, query,
		id, string(row.Status), row.Progress, row.VideoRef, row.Error, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("failed to upsert row %s: %w", id, err)
	}

	return tx.Commit()
}
