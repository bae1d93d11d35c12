// Package file provides file-based persistence for workflows, schedules,
// template snapshots and monitoring rows. Entities are stored as one JSON
// document per file under the root directory.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/clipline/clipline/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	scheduleRepo *ScheduleRepository
	templateRepo *TemplateRepository
	rowRepo      *RowRepository
}

// NewPersistence creates a new instance rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		scheduleRepo: NewScheduleRepository(cleanRoot),
		templateRepo: NewTemplateRepository(cleanRoot),
		rowRepo:      NewRowRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) ScheduleRepository() persistence.ScheduleRepository {
	return fp.scheduleRepo
}

func (fp *Persistence) TemplateRepository() persistence.TemplateRepository {
	return fp.templateRepo
}

func (fp *Persistence) RowRepository() persistence.RowRepository {
	return fp.rowRepo
}
