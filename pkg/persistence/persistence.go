// Package persistence provides the data storage abstraction layer for
// workflows, schedules, template snapshots and monitoring rows.
package persistence

import (
	"context"

	"github.com/clipline/clipline/pkg/models"
)

// Row field names accepted by RowRepository.Upsert. Only listed fields
// change; absent fields keep their stored values.
const (
	RowFieldStatus   = "status"
	RowFieldProgress = "progress"
	RowFieldVideoRef = "video_ref"
	RowFieldError    = "error"
)

// WorkflowRepository stores workflow aggregates. Repositories persist
// entities verbatim; lifecycle timestamps belong to the services that own
// the transition semantics.
type WorkflowRepository interface {
	Save(ctx context.Context, workflow *models.VideoWorkflow) error
	GetByID(ctx context.Context, id string) (*models.VideoWorkflow, error)
	// List returns the owner's workflows, most recently updated first.
	List(ctx context.Context, owner string) ([]*models.VideoWorkflow, error)
	// MostRecent returns the most recently updated workflow, or
	// ErrWorkflowNotFound when none exist.
	MostRecent(ctx context.Context) (*models.VideoWorkflow, error)
	Delete(ctx context.Context, id string) error
}

// ScheduleRepository stores per-operator schedule state.
type ScheduleRepository interface {
	GetByOperator(ctx context.Context, operatorID string) (*models.ScheduleState, error)
	Save(ctx context.Context, state *models.ScheduleState) error
}

// TemplateRepository stores the single pinned visual-template snapshot.
type TemplateRepository interface {
	Get(ctx context.Context) (*models.TemplateSnapshot, error)
	Save(ctx context.Context, snapshot *models.TemplateSnapshot) error
}

// RowRepository mirrors workflow progress into flat monitoring rows.
type RowRepository interface {
	// Upsert creates or partially updates a row; only the listed fields change.
	Upsert(ctx context.Context, id string, fields map[string]any) error
	Get(ctx context.Context, id string) (*models.WorkflowRow, error)
}

// Persistence aggregates the repositories behind one storage backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ScheduleRepository() ScheduleRepository
	TemplateRepository() TemplateRepository
	RowRepository() RowRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
