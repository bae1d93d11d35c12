package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
)

// ScheduleRepository handles per-operator schedule state in PostgreSQL.
type ScheduleRepository struct {
	db *sql.DB
}

// GetByOperator retrieves schedule state for one operator.
func (sr *ScheduleRepository) GetByOperator(ctx context.Context, operatorID string) (*models.ScheduleState, error) {
	var doc []byte

	err := sr.db.QueryRowContext(ctx, "SELECT doc FROM schedules WHERE operator_id = $1", operatorID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrScheduleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query schedule for operator %s: %w", operatorID, err)
	}

	var state models.ScheduleState

	if err := json.Unmarshal(doc, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule for operator %s: %w", operatorID, err)
	}

	return &state, nil
}

// Save upserts schedule state for its operator.
func (sr *ScheduleRepository) Save(ctx context.Context, state *models.ScheduleState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule for operator %s: %w", state.Config.OperatorID, err)
	}

	query := `
		INSERT INTO schedules (operator_id, doc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (operator_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`

	_, err = sr.db.ExecContext(ctx, query, state.Config.OperatorID, doc, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save schedule for operator %s: %w", state.Config.OperatorID, err)
	}

	return nil
}

// TemplateRepository stores the single pinned template snapshot in PostgreSQL.
type TemplateRepository struct {
	db *sql.DB
}

// Get retrieves the pinned snapshot.
func (tr *TemplateRepository) Get(ctx context.Context) (*models.TemplateSnapshot, error) {
	var doc []byte

	err := tr.db.QueryRowContext(ctx, "SELECT doc FROM template_snapshots WHERE id = 1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrTemplateNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query template snapshot: %w", err)
	}

	var snapshot models.TemplateSnapshot

	if err := json.Unmarshal(doc, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template snapshot: %w", err)
	}

	return &snapshot, nil
}

// Save replaces the pinned snapshot.
func (tr *TemplateRepository) Save(ctx context.Context, snapshot *models.TemplateSnapshot) error {
	doc, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal template snapshot: %w", err)
	}

	query := `
		INSERT INTO template_snapshots (id, doc, saved_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, saved_at = EXCLUDED.saved_at
	`

	_, err = tr.db.ExecContext(ctx, query, doc, snapshot.SavedAt)
	if err != nil {
		return fmt.Errorf("failed to save template snapshot: %w", err)
	}

	return nil
}
