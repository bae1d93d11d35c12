package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/clipline/clipline/pkg/models"
)

// PinTemplate saves the workflow's render options and brief defaults as the
// pinned template snapshot, remembering the source title/topic so automation
// can rewrite literal overlay text for other items later.
func (s *Service) PinTemplate(ctx context.Context, workflowID string) (*models.TemplateSnapshot, error) {
	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.TemplateSnapshot{
		RenderOptions: workflow.RenderOptions,
		SourceTitle:   workflow.Input.Title,
		SourceTopic:   workflow.Input.Topic,
		Style:         workflow.Input.Style,
		Voice:         workflow.Input.Voice,
		SceneCount:    workflow.Input.SceneCount,
		SavedAt:       time.Now().UTC(),
	}

	if err := s.persistence.TemplateRepository().Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save template snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "Template pinned",
		"workflow_id", workflowID, "title", snapshot.SourceTitle)

	return snapshot, nil
}

// PinnedTemplate returns the stored template snapshot.
func (s *Service) PinnedTemplate(ctx context.Context) (*models.TemplateSnapshot, error) {
	return s.persistence.TemplateRepository().Get(ctx)
}
