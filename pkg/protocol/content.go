// Package protocol defines the collaborator contracts the production core
// depends on. Implementations are bring-your-own: an AI content provider,
// an external renderer, a spreadsheet-backed item source and a video host.
package protocol

import (
	"context"

	"github.com/clipline/clipline/pkg/models"
)

// ImageProgress reports fractional progress while a batch of scene images is
// generated, completed over total.
type ImageProgress func(completed, total int)

// ContentGenerator produces narration, scene splits, scene images and speech.
type ContentGenerator interface {
	GenerateNarration(ctx context.Context, title, topic string, targetLengthSec int) (string, error)

	SplitScenes(ctx context.Context, title, narration, style, aspectRatio string, sceneCount int) ([]*models.WorkflowScene, error)

	// GenerateImages returns one image reference per prompt, in order.
	GenerateImages(ctx context.Context, jobID string, prompts []string, aspectRatio string, onProgress ImageProgress) ([]string, error)

	GenerateSpeech(ctx context.Context, jobID, text, voice string, speed float64) (string, error)
}
