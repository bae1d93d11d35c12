package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
)

// RowRepository stores monitoring rows as JSON files.
type RowRepository struct {
	root string
}

// NewRowRepository creates a new row repository.
func NewRowRepository(root string) *RowRepository {
	return &RowRepository{root: root}
}

// Get retrieves a monitoring row by ID.
func (rr *RowRepository) Get(_ context.Context, id string) (*models.WorkflowRow, error) {
	filePath := filepath.Clean(path.Join(rr.root, "rows", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrRowNotFound
		}

		return nil, fmt.Errorf("failed to fetch row %s: %w", id, err)
	}

	var row models.WorkflowRow

	err = json.Unmarshal(body, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal row %s: %w", id, err)
	}

	return &row, nil
}

// Upsert creates or partially updates a row; only listed fields change.
func (rr *RowRepository) Upsert(ctx context.Context, id string, fields map[string]any) error {
	row, err := rr.Get(ctx, id)
	if err != nil {
		if !persistence.IsRowNotFound(err) {
			return err
		}

		row = &models.WorkflowRow{ID: id}
	}

	if err := persistence.ApplyRowFields(row, fields); err != nil {
		return err
	}

	row.UpdatedAt = time.Now().UTC()

	if err := os.MkdirAll(path.Join(rr.root, "rows"), 0750); err != nil {
		return fmt.Errorf("failed to create rows directory: %w", err)
	}

	data, err := json.MarshalIndent(row, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal row %s: %w", id, err)
	}

	return os.WriteFile(path.Join(rr.root, "rows", id+".json"), data, 0600)
}
