package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
	"github.com/clipline/clipline/pkg/projection"
	"github.com/clipline/clipline/pkg/protocol"
)

const defaultSpeechSpeed = 1.0

// buildAssets produces one image per scene and the narration audio. Image
// progress is mirrored into the monitoring row as fractional progress
// between the generating_images and assets_review marks.
func (s *Service) buildAssets(ctx context.Context, workflow *models.VideoWorkflow) error {
	if err := models.ValidateScenes(workflow.Scenes); err != nil {
		return fmt.Errorf("scene split not approvable: %w", err)
	}

	prompts := make([]string, len(workflow.Scenes))
	for i, scene := range workflow.Scenes {
		prompts[i] = scene.ImagePrompt
	}

	base := projection.Progress(models.RowStatusScriptReview)
	span := projection.Progress(models.RowStatusGeneratingImages) - base

	onProgress := func(completed, total int) {
		if total == 0 {
			return
		}

		err := s.persistence.RowRepository().Upsert(ctx, workflow.ID, map[string]any{
			persistence.RowFieldStatus:   string(models.RowStatusGeneratingImages),
			persistence.RowFieldProgress: base + span*completed/total,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to report image progress",
				"workflow_id", workflow.ID, "error", err)
		}
	}

	refs, err := s.generator.GenerateImages(ctx,
		workflow.ID, prompts, workflow.Input.AspectRatio, onProgress)
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}

	if len(refs) != len(workflow.Scenes) {
		return fmt.Errorf("image generation returned %d images for %d scenes",
			len(refs), len(workflow.Scenes))
	}

	for i, ref := range refs {
		workflow.Scenes[i].ImageRef = ref
	}

	ttsRef, err := s.generator.GenerateSpeech(ctx,
		workflow.ID, workflow.Narration, workflow.Input.Voice, defaultSpeechSpeed)
	if err != nil {
		return fmt.Errorf("speech generation failed: %w", err)
	}

	workflow.TTSRef = ttsRef

	return nil
}

// renderPreview assembles the approved assets into a preview video.
func (s *Service) renderPreview(ctx context.Context, workflow *models.VideoWorkflow) error {
	if !workflow.HasAllSceneImages() {
		return fmt.Errorf("assets incomplete: every scene needs an image before rendering")
	}

	if workflow.TTSRef == "" {
		return fmt.Errorf("assets incomplete: narration audio missing")
	}

	ref, err := s.renderer.Render(ctx, s.renderRequest(workflow, false))
	if err != nil {
		return fmt.Errorf("preview render failed: %w", err)
	}

	workflow.PreviewRef = ref

	return nil
}

// renderFinal produces the deliverable. When the overlay opts into reusing
// the preview no render pass runs at all; the approved preview is the final.
func (s *Service) renderFinal(ctx context.Context, workflow *models.VideoWorkflow) error {
	if workflow.PreviewRef == "" {
		return fmt.Errorf("no preview to finalize")
	}

	// An edit at video review can drop assets without clearing the preview;
	// the final pass needs the same assets the preview needed.
	if !workflow.HasAllSceneImages() {
		return fmt.Errorf("assets incomplete: every scene needs an image before rendering")
	}

	if workflow.TTSRef == "" {
		return fmt.Errorf("assets incomplete: narration audio missing")
	}

	if workflow.RenderOptions.Overlay.UsePreviewAsFinal {
		workflow.FinalRef = workflow.PreviewRef

		return nil
	}

	ref, err := s.renderer.Render(ctx, s.renderRequest(workflow, true))
	if err != nil {
		return fmt.Errorf("final render failed: %w", err)
	}

	workflow.FinalRef = ref

	return nil
}

func (s *Service) renderRequest(workflow *models.VideoWorkflow, final bool) protocol.RenderRequest {
	refs := make([]string, len(workflow.Scenes))
	lines := make([]string, len(workflow.Scenes))

	for i, scene := range workflow.Scenes {
		refs[i] = scene.ImageRef
		lines[i] = scene.NarrationText
	}

	return protocol.RenderRequest{
		JobID:             workflow.ID,
		ImageRefs:         refs,
		AudioRef:          workflow.TTSRef,
		SubtitleText:      strings.Join(lines, "\n"),
		TitleText:         workflow.Input.Title,
		Options:           workflow.RenderOptions,
		TargetDurationSec: workflow.Input.TargetLengthSec,
		Final:             final,
	}
}
