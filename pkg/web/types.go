// Package web provides HTTP request and response types for the production API.
package web

import (
	"encoding/json"

	"github.com/clipline/clipline/pkg/models"
)

// CreateWorkflowRequest is the request body for starting a workflow.
// RenderOptions is kept raw so it can be schema-validated before decoding.
type CreateWorkflowRequest struct {
	Title           string          `json:"title"                    validate:"required,min=1"`
	Topic           string          `json:"topic,omitempty"`
	Narration       string          `json:"narration,omitempty"`
	Style           string          `json:"style,omitempty"`
	Voice           string          `json:"voice,omitempty"`
	AspectRatio     string          `json:"aspect_ratio,omitempty"`
	TargetLengthSec int             `json:"target_length_sec"        validate:"min=0,max=600"`
	SceneCount      int             `json:"scene_count"              validate:"min=0,max=12"`
	RenderOptions   json.RawMessage `json:"render_options,omitempty"`
}

// Brief maps the request onto the domain brief.
func (r CreateWorkflowRequest) Brief() models.Brief {
	return models.Brief{
		Title:           r.Title,
		Topic:           r.Topic,
		Narration:       r.Narration,
		Style:           r.Style,
		Voice:           r.Voice,
		AspectRatio:     r.AspectRatio,
		TargetLengthSec: r.TargetLengthSec,
		SceneCount:      r.SceneCount,
	}
}

// UpdateWorkflowRequest is the request body for editing a workflow between
// advances. All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Stage         *models.Stage           `json:"stage,omitempty"`
	Narration     *string                 `json:"narration,omitempty"`
	Scenes        []*models.WorkflowScene `json:"scenes,omitempty"`
	RenderOptions json.RawMessage         `json:"render_options,omitempty"`
}

// StartRunRequest optionally overrides the operator's stored schedule
// parameters for a manually triggered run.
type StartRunRequest struct {
	ItemsPerRun   int                 `json:"items_per_run,omitempty"  validate:"min=0,max=20"`
	SheetRef      string              `json:"sheet_ref,omitempty"`
	UploadMode    models.UploadMode   `json:"upload_mode,omitempty"    validate:"omitempty,oneof=publish stage_only"`
	PrivacyStatus string              `json:"privacy_status,omitempty" validate:"omitempty,oneof=public unlisted private"`
	TemplateMode  models.TemplateMode `json:"template_mode,omitempty"  validate:"omitempty,oneof=latest_workflow pinned"`
}

// PinTemplateRequest pins an existing workflow's render options as the
// template snapshot automation falls back to.
type PinTemplateRequest struct {
	WorkflowID string `json:"workflow_id" validate:"required"`
}

// UpdateScheduleRequest is the request body for PUT /automation/schedule.
// The operator comes from the request identity, not the body.
type UpdateScheduleRequest struct {
	Enabled       bool                `json:"enabled"`
	Cadence       models.Cadence      `json:"cadence,omitempty"        validate:"omitempty,oneof=interval_hours daily"`
	IntervalHours int                 `json:"interval_hours,omitempty" validate:"min=0,max=168"`
	DailyTime     string              `json:"daily_time,omitempty"     validate:"omitempty,datetime=15:04"`
	ItemsPerRun   int                 `json:"items_per_run,omitempty"  validate:"min=0,max=20"`
	SheetRef      string              `json:"sheet_ref,omitempty"`
	UploadMode    models.UploadMode   `json:"upload_mode,omitempty"    validate:"omitempty,oneof=publish stage_only"`
	PrivacyStatus string              `json:"privacy_status,omitempty" validate:"omitempty,oneof=public unlisted private"`
	TemplateMode  models.TemplateMode `json:"template_mode,omitempty"  validate:"omitempty,oneof=latest_workflow pinned"`
}

// Config maps the request onto a schedule configuration for the operator.
func (r UpdateScheduleRequest) Config(operatorID string) models.ScheduleConfig {
	return models.ScheduleConfig{
		OperatorID:    operatorID,
		Enabled:       r.Enabled,
		Cadence:       r.Cadence,
		IntervalHours: r.IntervalHours,
		DailyTime:     r.DailyTime,
		ItemsPerRun:   r.ItemsPerRun,
		SheetRef:      r.SheetRef,
		UploadMode:    r.UploadMode,
		PrivacyStatus: r.PrivacyStatus,
		TemplateMode:  r.TemplateMode,
	}
}
