package workflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/clipline/clipline/pkg/events"
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/otelhelper"
)

// Advance approves the current stage and runs the production step that
// carries the workflow into the next one. The processing status is an
// advisory guard, not a lock: a guard older than the staleness threshold is
// treated as abandoned and reclaimed, leaving a recovery note behind.
//
// Errors are only returned for rejected calls (fresh guard, missing
// workflow) and persistence failures. Production failures park the workflow
// at status failed and return it with a nil error.
func (s *Service) Advance(ctx context.Context, id string) (*models.VideoWorkflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "workflow.advance",
		attribute.String(otelhelper.WorkflowIDKey, id))
	defer span.End()

	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch workflow.Status {
	case models.StatusProcessing:
		if time.Since(workflow.UpdatedAt) < s.staleAfter {
			return nil, ErrStillProcessing
		}

		note := fmt.Sprintf("reclaimed stale processing at stage %s after %s, last update %s",
			workflow.Stage, s.staleAfter, workflow.UpdatedAt.UTC().Format(time.RFC3339))
		workflow.RecoveryNotes = append(workflow.RecoveryNotes, note)

		s.logger.WarnContext(ctx, "Reclaiming stale processing guard",
			"workflow_id", workflow.ID, "stage", workflow.Stage,
			"last_update", workflow.UpdatedAt)
	case models.StatusFailed:
		// Advancing a failed workflow is a retry of the failed step.
		workflow.Error = ""
	case models.StatusIdle:
	}

	if workflow.Stage == models.StageFinalReady {
		return workflow, nil
	}

	fromStage := workflow.Stage

	// The guard must be visible to concurrent callers before any
	// collaborator work begins.
	workflow.Status = models.StatusProcessing
	if err := s.save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	if err := s.runStage(ctx, workflow); err != nil {
		otelhelper.SetError(span, err,
			attribute.String(otelhelper.StageKey, string(workflow.Stage)))

		return workflow, s.park(ctx, workflow, err)
	}

	workflow.Stage = fromStage.Next()
	workflow.Status = models.StatusIdle
	workflow.Error = ""

	if err := s.save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	s.publish(ctx, workflow.ID, events.WorkflowStageAdvanced{
		BaseEvent:  s.baseEvent(events.WorkflowStageAdvancedEvent),
		WorkflowID: workflow.ID,
		FromStage:  fromStage,
		ToStage:    workflow.Stage,
	})

	s.logger.InfoContext(ctx, "Workflow advanced",
		"workflow_id", workflow.ID, "from", fromStage, "to", workflow.Stage)

	return workflow, nil
}

// runStage executes the production step that approval of the current stage
// triggers.
func (s *Service) runStage(ctx context.Context, workflow *models.VideoWorkflow) error {
	switch workflow.Stage {
	case models.StageSceneSplitReview:
		return s.buildAssets(ctx, workflow)
	case models.StageAssetsReview:
		return s.renderPreview(ctx, workflow)
	case models.StageVideoReview:
		return s.renderFinal(ctx, workflow)
	default:
		return fmt.Errorf("no production step for stage %s", workflow.Stage)
	}
}
