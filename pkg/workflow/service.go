// Package workflow owns the staged production state machine that advances a
// single job through review gates: scene split, assets, preview render and
// final render. Production failures never escape Start or Advance as errors;
// they park the workflow at status failed with a human-readable message so
// the job stays observable and retryable.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/clipline/clipline/pkg/eventbus"
	"github.com/clipline/clipline/pkg/events"
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
	"github.com/clipline/clipline/pkg/projection"
	"github.com/clipline/clipline/pkg/protocol"
)

// DefaultStaleAfter is how long a processing guard may go without an update
// before a later Advance call treats it as abandoned and reclaims it.
const DefaultStaleAfter = 5 * time.Minute

var (
	// ErrStillProcessing is returned when Advance is called while another
	// transition holds a fresh processing guard.
	ErrStillProcessing = errors.New("workflow is still processing")

	// ErrEditWhileProcessing is returned when Update is called mid-transition.
	ErrEditWhileProcessing = errors.New("workflow is processing and cannot be edited")

	// ErrStageForwardUpdate is returned when an update tries to move the
	// stage forward; only Advance moves stages forward.
	ErrStageForwardUpdate = errors.New("stage can only move backward through updates")
)

// Service drives workflows through their stages.
type Service struct {
	persistence persistence.Persistence
	generator   protocol.ContentGenerator
	renderer    protocol.Renderer
	eventBus    eventbus.EventPublisher
	validate    *validator.Validate
	logger      *slog.Logger
	tracer      trace.Tracer
	staleAfter  time.Duration
}

// Option configures optional Service behavior.
type Option func(*Service)

// WithStaleAfter overrides the processing-guard staleness threshold.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) {
		s.staleAfter = d
	}
}

// NewService constructs the workflow service. The event bus may be nil when
// lifecycle notifications are not wanted.
func NewService(
	p persistence.Persistence,
	generator protocol.ContentGenerator,
	renderer protocol.Renderer,
	eventBus eventbus.EventPublisher,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		persistence: p,
		generator:   generator,
		renderer:    renderer,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("module", "workflow"),
		tracer:      otel.Tracer("clipline/workflow"),
		staleAfter:  DefaultStaleAfter,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get fetches a workflow by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.VideoWorkflow, error) {
	return s.persistence.WorkflowRepository().GetByID(ctx, id)
}

// List returns the owner's workflows, most recently updated first.
func (s *Service) List(ctx context.Context, owner string) ([]*models.VideoWorkflow, error) {
	return s.persistence.WorkflowRepository().List(ctx, owner)
}

// save persists the workflow and mirrors it into the row store. Row updates
// are best-effort: the projection is derived, never authoritative, so a row
// store failure must not fail the transition that produced it.
func (s *Service) save(ctx context.Context, workflow *models.VideoWorkflow) error {
	workflow.UpdatedAt = time.Now().UTC()

	if err := s.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return err
	}

	s.updateRow(ctx, workflow)

	return nil
}

func (s *Service) updateRow(ctx context.Context, workflow *models.VideoWorkflow) {
	row := projection.FromWorkflow(workflow)

	err := s.persistence.RowRepository().Upsert(ctx, row.ID, projection.Fields(row))
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to update monitoring row",
			"workflow_id", workflow.ID, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "error", err)
	}
}

func (s *Service) baseEvent(eventType events.EventType) events.BaseEvent {
	id := ""
	if bus, ok := s.eventBus.(eventbus.EventBus); ok {
		id = bus.GenerateID()
	}

	return events.BaseEvent{ID: id, Type: eventType, Timestamp: time.Now().UTC()}
}
