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

// ScheduleRepository stores per-operator schedule state as JSON files.
type ScheduleRepository struct {
	root string
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(root string) *ScheduleRepository {
	return &ScheduleRepository{root: root}
}

// GetByOperator retrieves the schedule state for one operator.
func (sr *ScheduleRepository) GetByOperator(_ context.Context, operatorID string) (*models.ScheduleState, error) {
	filePath := filepath.Clean(path.Join(sr.root, "schedules", operatorID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrScheduleNotFound
		}

		return nil, fmt.Errorf("failed to fetch schedule for operator %s: %w", operatorID, err)
	}

	var state models.ScheduleState

	err = json.Unmarshal(body, &state)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule for operator %s: %w", operatorID, err)
	}

	return &state, nil
}

// Save writes the schedule state for its operator.
func (sr *ScheduleRepository) Save(_ context.Context, state *models.ScheduleState) error {
	err := os.MkdirAll(path.Join(sr.root, "schedules"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create schedules directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schedule for operator %s: %w", state.Config.OperatorID, err)
	}

	filePath := path.Join(sr.root, "schedules", state.Config.OperatorID+".json")

	return os.WriteFile(filePath, data, 0600)
}
