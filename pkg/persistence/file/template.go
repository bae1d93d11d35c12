package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
)

// TemplateRepository stores the single pinned template snapshot.
type TemplateRepository struct {
	root string
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(root string) *TemplateRepository {
	return &TemplateRepository{root: root}
}

// Get retrieves the pinned snapshot.
func (tr *TemplateRepository) Get(_ context.Context) (*models.TemplateSnapshot, error) {
	filePath := filepath.Clean(path.Join(tr.root, "templates", "pinned.json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrTemplateNotFound
		}

		return nil, fmt.Errorf("failed to fetch template snapshot: %w", err)
	}

	var snapshot models.TemplateSnapshot

	err = json.Unmarshal(body, &snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal template snapshot: %w", err)
	}

	return &snapshot, nil
}

// Save replaces the pinned snapshot.
func (tr *TemplateRepository) Save(_ context.Context, snapshot *models.TemplateSnapshot) error {
	err := os.MkdirAll(path.Join(tr.root, "templates"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create templates directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal template snapshot: %w", err)
	}

	filePath := path.Join(tr.root, "templates", "pinned.json")

	return os.WriteFile(filePath, data, 0600)
}
