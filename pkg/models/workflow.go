// Package models defines the core domain models for short-video production workflows.
package models

import "time"

// Stage is one of the four ordered phases a production job passes through.
type Stage string

const (
	StageSceneSplitReview Stage = "scene_split_review" // Narration split into scenes, awaiting review
	StageAssetsReview     Stage = "assets_review"      // Scene images and TTS audio produced
	StageVideoReview      Stage = "video_review"       // Preview rendered
	StageFinalReady       Stage = "final_ready"        // Final video rendered, terminal
)

// stageOrder defines the linear progression of stages.
var stageOrder = map[Stage]int{
	StageSceneSplitReview: 0,
	StageAssetsReview:     1,
	StageVideoReview:      2,
	StageFinalReady:       3,
}

// Index returns the position of the stage in the linear order, or -1 for
// unknown stages.
func (s Stage) Index() int {
	idx, ok := stageOrder[s]
	if !ok {
		return -1
	}

	return idx
}

// Valid reports whether the stage is one of the four known stages.
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Next returns the stage that follows s. The terminal stage returns itself.
func (s Stage) Next() Stage {
	switch s {
	case StageSceneSplitReview:
		return StageAssetsReview
	case StageAssetsReview:
		return StageVideoReview
	case StageVideoReview:
		return StageFinalReady
	default:
		return StageFinalReady
	}
}

// Status is the transition state of a workflow within its current stage.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusFailed     Status = "failed"
)

// Brief is the content request that starts a workflow.
type Brief struct {
	Title           string `json:"title"             validate:"required,min=1"`
	Topic           string `json:"topic,omitempty"`
	Narration       string `json:"narration,omitempty"` // When set, used verbatim instead of generating
	Style           string `json:"style,omitempty"`
	Voice           string `json:"voice,omitempty"`
	AspectRatio     string `json:"aspect_ratio,omitempty"`
	TargetLengthSec int    `json:"target_length_sec" validate:"min=0,max=600"`
	SceneCount      int    `json:"scene_count"       validate:"min=0,max=12"`
}

// VideoWorkflow is the aggregate root for one production job. Stage only
// advances through the workflow service's advance operation; direct updates
// may move it backward or keep it in place, never forward.
type VideoWorkflow struct {
	ID            string           `json:"id"`
	Owner         string           `json:"owner"`
	Stage         Stage            `json:"stage"`
	Status        Status           `json:"status"`
	Error         string           `json:"error,omitempty"`
	Input         Brief            `json:"input"`
	Narration     string           `json:"narration"`
	Scenes        []*WorkflowScene `json:"scenes"`
	TTSRef        string           `json:"tts_ref,omitempty"`
	PreviewRef    string           `json:"preview_ref,omitempty"`
	FinalRef      string           `json:"final_ref,omitempty"`
	RenderOptions RenderOptions    `json:"render_options"`
	RecoveryNotes []string         `json:"recovery_notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ResetArtifactsFrom clears every artifact produced after the given stage.
// Editing invalidates everything built on top of the edited material:
// rewinding to scene split drops images, audio and both renders; rewinding to
// assets review keeps images/audio but drops both renders; rewinding to video
// review keeps the preview and drops only the final.
func (w *VideoWorkflow) ResetArtifactsFrom(stage Stage) {
	switch stage {
	case StageSceneSplitReview:
		for _, scene := range w.Scenes {
			scene.ImageRef = ""
		}

		w.TTSRef = ""
		w.PreviewRef = ""
		w.FinalRef = ""
	case StageAssetsReview:
		w.PreviewRef = ""
		w.FinalRef = ""
	case StageVideoReview:
		w.FinalRef = ""
	case StageFinalReady:
		// Nothing downstream of the terminal stage.
	}
}

// HasAllSceneImages reports whether every scene carries an image reference.
func (w *VideoWorkflow) HasAllSceneImages() bool {
	if len(w.Scenes) == 0 {
		return false
	}

	for _, scene := range w.Scenes {
		if scene.ImageRef == "" {
			return false
		}
	}

	return true
}
