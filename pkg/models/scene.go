package models

import (
	"errors"
	"fmt"
)

const (
	// MinScenes and MaxScenes bound the number of scenes a valid split produces.
	MinScenes = 3
	MaxScenes = 12
)

var (
	// ErrInvalidSceneSplit indicates a scene split that violates the scene invariants.
	ErrInvalidSceneSplit = errors.New("invalid scene split")
)

// WorkflowScene is one narrated scene of a workflow. Indices are 1-based and
// contiguous within a workflow.
type WorkflowScene struct {
	Index         int    `json:"index"          validate:"min=1"`
	Title         string `json:"title"          validate:"required"`
	NarrationText string `json:"narration_text" validate:"required"`
	ImagePrompt   string `json:"image_prompt"   validate:"required"`
	ImageRef      string `json:"image_ref,omitempty"`
}

// ValidateScenes checks the scene invariants: count within [MinScenes,
// MaxScenes], indices exactly 1..N in order, and non-empty title, narration
// and image prompt on every scene.
func ValidateScenes(scenes []*WorkflowScene) error {
	if len(scenes) < MinScenes || len(scenes) > MaxScenes {
		return fmt.Errorf("%w: got %d scenes, want between %d and %d",
			ErrInvalidSceneSplit, len(scenes), MinScenes, MaxScenes)
	}

	for i, scene := range scenes {
		if scene == nil {
			return fmt.Errorf("%w: scene %d is nil", ErrInvalidSceneSplit, i+1)
		}

		if scene.Index != i+1 {
			return fmt.Errorf("%w: scene at position %d has index %d", ErrInvalidSceneSplit, i+1, scene.Index)
		}

		if scene.Title == "" || scene.NarrationText == "" || scene.ImagePrompt == "" {
			return fmt.Errorf("%w: scene %d has empty fields", ErrInvalidSceneSplit, scene.Index)
		}
	}

	return nil
}
