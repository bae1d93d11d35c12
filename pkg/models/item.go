package models

import "time"

// WorkItem is one external work record explicitly marked eligible for
// automated processing.
type WorkItem struct {
	ID          string `json:"id"`
	Keyword     string `json:"keyword"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Narration   string `json:"narration"`
}

// RowStatus is the flat monitoring status mirrored into the row store.
type RowStatus string

const (
	RowStatusQueued           RowStatus = "queued"
	RowStatusScriptReview     RowStatus = "script_review"
	RowStatusGeneratingImages RowStatus = "generating_images"
	RowStatusAssetsReview     RowStatus = "assets_review"
	RowStatusVideoRendering   RowStatus = "video_rendering"
	RowStatusVideoReview      RowStatus = "video_review"
	RowStatusReady            RowStatus = "ready"
	RowStatusFailed           RowStatus = "failed"
)

// WorkflowRow is the derived status/progress record consumed by monitoring
// surfaces. It is transient and reconstructible, never a source of truth.
type WorkflowRow struct {
	ID        string    `json:"id"`
	Status    RowStatus `json:"status"`
	Progress  int       `json:"progress"` // 0..100
	VideoRef  string    `json:"video_ref,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateSnapshot pins the most recently applied visual template plus the
// brief defaults (style, voice, scene count) so one configuration can serve
// many automated items.
type TemplateSnapshot struct {
	RenderOptions RenderOptions `json:"render_options"`
	SourceTitle   string        `json:"source_title"`
	SourceTopic   string        `json:"source_topic"`
	Style         string        `json:"style,omitempty"`
	Voice         string        `json:"voice,omitempty"`
	SceneCount    int           `json:"scene_count,omitempty"`
	SavedAt       time.Time     `json:"saved_at"`
}
