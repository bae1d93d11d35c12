package workflow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/otelhelper"
)

// UpdateRequest carries the reviewer edits applied to a workflow between
// stage advances. Nil fields are left unchanged.
type UpdateRequest struct {
	// Stage, when set, rewinds the workflow. Forward moves are rejected;
	// only Advance moves a workflow forward.
	Stage *models.Stage `json:"stage,omitempty"`

	Narration     *string                 `json:"narration,omitempty"`
	Scenes        []*models.WorkflowScene `json:"scenes,omitempty"`
	RenderOptions *models.RenderOptions   `json:"render_options,omitempty"`
}

// Update applies reviewer edits. A workflow holding a processing guard
// cannot be edited. Rewinding clears every artifact downstream of the target
// stage and returns the workflow to idle so it can be advanced again.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*models.VideoWorkflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "workflow.update",
		attribute.String(otelhelper.WorkflowIDKey, id))
	defer span.End()

	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow.Status == models.StatusProcessing {
		return nil, ErrEditWhileProcessing
	}

	if req.Stage != nil {
		if !req.Stage.Valid() {
			return nil, fmt.Errorf("unknown stage %q", *req.Stage)
		}

		if req.Stage.Index() > workflow.Stage.Index() {
			return nil, ErrStageForwardUpdate
		}

		if req.Stage.Index() < workflow.Stage.Index() {
			workflow.Stage = *req.Stage
			workflow.ResetArtifactsFrom(*req.Stage)
		}
	}

	if req.Narration != nil {
		workflow.Narration = *req.Narration
	}

	if req.Scenes != nil {
		if err := models.ValidateScenes(req.Scenes); err != nil {
			return nil, fmt.Errorf("invalid scenes: %w", err)
		}

		workflow.Scenes = req.Scenes
	}

	if req.RenderOptions != nil {
		options := *req.RenderOptions
		options.Normalize()
		workflow.RenderOptions = options
	}

	// Any accepted edit clears a prior failure; the operator has changed
	// the inputs and the workflow is retryable again.
	workflow.Status = models.StatusIdle
	workflow.Error = ""

	if err := s.save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	s.logger.InfoContext(ctx, "Workflow updated",
		"workflow_id", workflow.ID, "stage", workflow.Stage)

	return workflow, nil
}
