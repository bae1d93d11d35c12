package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clipline/clipline/pkg/events"
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/otelhelper"
)

// Start creates a workflow from a brief and produces its scene split. Brief
// validation failures are returned as errors; narration or split failures
// park the created workflow at status failed and return it with a nil error,
// so a bad provider response still leaves an inspectable job behind.
func (s *Service) Start(ctx context.Context, owner string, brief models.Brief, options models.RenderOptions) (*models.VideoWorkflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "workflow.start",
		attribute.String(otelhelper.OperatorIDKey, owner))
	defer span.End()

	if err := s.validate.Struct(brief); err != nil {
		return nil, fmt.Errorf("invalid brief: %w", err)
	}

	options.Normalize()

	now := time.Now().UTC()
	workflow := &models.VideoWorkflow{
		ID:            uuid.NewString(),
		Owner:         owner,
		Stage:         models.StageSceneSplitReview,
		Status:        models.StatusProcessing,
		Input:         brief,
		Narration:     brief.Narration,
		RenderOptions: options,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	s.updateRow(ctx, workflow)
	s.publish(ctx, workflow.ID, events.WorkflowCreated{
		BaseEvent:  s.baseEvent(events.WorkflowCreatedEvent),
		WorkflowID: workflow.ID,
		Stage:      workflow.Stage,
		Title:      brief.Title,
	})

	s.logger.InfoContext(ctx, "Workflow created",
		"workflow_id", workflow.ID, "title", brief.Title)

	if err := s.produceSceneSplit(ctx, workflow); err != nil {
		otelhelper.SetError(span, err,
			attribute.String(otelhelper.WorkflowIDKey, workflow.ID))

		return workflow, s.park(ctx, workflow, err)
	}

	workflow.Status = models.StatusIdle
	workflow.Error = ""

	if err := s.save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return workflow, nil
}

// produceSceneSplit generates narration when the brief did not supply one,
// then splits it into validated scenes.
func (s *Service) produceSceneSplit(ctx context.Context, workflow *models.VideoWorkflow) error {
	brief := workflow.Input

	if strings.TrimSpace(workflow.Narration) == "" {
		narration, err := s.generator.GenerateNarration(ctx, brief.Title, brief.Topic, brief.TargetLengthSec)
		if err != nil {
			return fmt.Errorf("narration generation failed: %w", err)
		}

		workflow.Narration = narration
	}

	scenes, err := s.generator.SplitScenes(ctx,
		brief.Title, workflow.Narration, brief.Style, brief.AspectRatio, brief.SceneCount)
	if err != nil {
		return fmt.Errorf("scene split failed: %w", err)
	}

	if err := models.ValidateScenes(scenes); err != nil {
		return fmt.Errorf("scene split rejected: %w", err)
	}

	workflow.Scenes = scenes

	return nil
}

// park records a production failure on the workflow. The returned error is
// the persistence error if saving the failed state itself fails, nil
// otherwise.
func (s *Service) park(ctx context.Context, workflow *models.VideoWorkflow, cause error) error {
	workflow.Status = models.StatusFailed
	workflow.Error = cause.Error()

	s.logger.ErrorContext(ctx, "Workflow failed",
		"workflow_id", workflow.ID, "stage", workflow.Stage, "error", cause)

	s.publish(ctx, workflow.ID, events.WorkflowFailed{
		BaseEvent:  s.baseEvent(events.WorkflowFailedEvent),
		WorkflowID: workflow.ID,
		Stage:      workflow.Stage,
		Error:      cause.Error(),
	})

	if err := s.save(ctx, workflow); err != nil {
		return fmt.Errorf("failed to save failed workflow: %w", err)
	}

	return nil
}
