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

// WorkflowRepository handles workflow operations against PostgreSQL.
type WorkflowRepository struct {
	db *sql.DB
}

// Save upserts the workflow document.
func (wr *WorkflowRepository) Save(ctx context.Context, workflow *models.VideoWorkflow) error {
	doc, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	query := `
		INSERT INTO workflows (id, owner, stage, status, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			stage = EXCLUDED.stage,
			status = EXCLUDED.status,
			doc = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at
	`

	_, err = wr.db.ExecContext(ctx, query,
		workflow.ID, workflow.Owner, string(workflow.Stage), string(workflow.Status),
		doc, workflow.CreatedAt, workflow.UpdatedAt)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// GetByID retrieves a workflow by its ID.
func (wr *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.VideoWorkflow, error) {
	var doc []byte

	err := wr.db.QueryRowContext(ctx, "SELECT doc FROM workflows WHERE id = $1", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return decodeWorkflow(doc, id)
}

// List returns the owner's workflows, most recently updated first.
func (wr *WorkflowRepository) List(ctx context.Context, owner string) ([]*models.VideoWorkflow, error) {
	rows, err := wr.db.QueryContext(ctx,
		"SELECT doc FROM workflows WHERE owner = $1 ORDER BY updated_at DESC", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	workflows := make([]*models.VideoWorkflow, 0)

	for rows.Next() {
		var doc []byte

		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}

		workflow, err := decodeWorkflow(doc, "")
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return workflows, nil
}

// MostRecent returns the most recently updated workflow.
func (wr *WorkflowRepository) MostRecent(ctx context.Context) (*models.VideoWorkflow, error) {
	var doc []byte

	err := wr.db.QueryRowContext(ctx, "SELECT doc FROM workflows ORDER BY updated_at DESC LIMIT 1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrWorkflowNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query most recent workflow: %w", err)
	}

	return decodeWorkflow(doc, "")
}

// Delete removes a workflow by its ID.
func (wr *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := wr.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

func decodeWorkflow(doc []byte, id string) (*models.VideoWorkflow, error) {
	var workflow models.VideoWorkflow

	if err := json.Unmarshal(doc, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("Decode", id, err)
	}

	return &workflow, nil
}
