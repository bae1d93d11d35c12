package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Cadence selects how the scheduler spaces unattended runs.
type Cadence string

const (
	CadenceIntervalHours Cadence = "interval_hours"
	CadenceDaily         Cadence = "daily"
)

// UploadMode decides whether a finished workflow is published or left staged.
type UploadMode string

const (
	UploadModePublish   UploadMode = "publish"
	UploadModeStageOnly UploadMode = "stage_only"
)

// TemplateMode selects where automation defaults come from.
type TemplateMode string

const (
	TemplateModeLatestWorkflow TemplateMode = "latest_workflow"
	TemplateModePinned         TemplateMode = "pinned"
)

// ErrInvalidSchedule is returned when schedule validation fails.
var ErrInvalidSchedule = errors.New("invalid schedule configuration")

// ScheduleConfig is the persisted per-operator cadence configuration for
// unattended automation runs.
type ScheduleConfig struct {
	OperatorID    string       `json:"operator_id"    validate:"required"`
	Enabled       bool         `json:"enabled"`
	Cadence       Cadence      `json:"cadence"        validate:"omitempty,oneof=interval_hours daily"`
	IntervalHours int          `json:"interval_hours" validate:"min=0,max=168"`
	DailyTime     string       `json:"daily_time"     validate:"omitempty,datetime=15:04"`
	ItemsPerRun   int          `json:"items_per_run"  validate:"min=0,max=20"`
	SheetRef      string       `json:"sheet_ref,omitempty"`
	UploadMode    UploadMode   `json:"upload_mode"    validate:"omitempty,oneof=publish stage_only"`
	PrivacyStatus string       `json:"privacy_status" validate:"omitempty,oneof=public unlisted private"`
	TemplateMode  TemplateMode `json:"template_mode"  validate:"omitempty,oneof=latest_workflow pinned"`
}

// Normalize completes absent fields with defaults and clamps ranges.
func (c *ScheduleConfig) Normalize() {
	if c.Cadence == "" {
		c.Cadence = CadenceIntervalHours
	}

	if c.IntervalHours == 0 {
		c.IntervalHours = 24
	}

	c.IntervalHours = clampInt(c.IntervalHours, 1, 168)

	if c.DailyTime == "" {
		c.DailyTime = "09:00"
	}

	if c.ItemsPerRun == 0 {
		c.ItemsPerRun = 3
	}

	c.ItemsPerRun = clampInt(c.ItemsPerRun, 1, 20)

	if c.UploadMode == "" {
		c.UploadMode = UploadModeStageOnly
	}

	if c.PrivacyStatus == "" {
		c.PrivacyStatus = "private"
	}

	if c.TemplateMode == "" {
		c.TemplateMode = TemplateModeLatestWorkflow
	}
}

// NextRun computes the next run instant strictly after the reference time.
// interval_hours adds the configured number of hours; daily finds the next
// occurrence of DailyTime, rolling to tomorrow when today's slot has passed.
func (c *ScheduleConfig) NextRun(from time.Time) (time.Time, error) {
	switch c.Cadence {
	case CadenceIntervalHours:
		return from.Add(time.Duration(c.IntervalHours) * time.Hour), nil
	case CadenceDaily:
		var hour, minute int

		_, err := fmt.Sscanf(c.DailyTime, "%d:%d", &hour, &minute)
		if err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return time.Time{}, fmt.Errorf("%w: bad daily time %q", ErrInvalidSchedule, c.DailyTime)
		}

		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

		cronSchedule, err := parser.Parse(fmt.Sprintf("%d %d * * *", minute, hour))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}

		return cronSchedule.Next(from), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown cadence %q", ErrInvalidSchedule, c.Cadence)
	}
}

// ScheduleResult records the outcome of a scheduler tick.
type ScheduleResult string

const (
	ScheduleResultStarted        ScheduleResult = "started"
	ScheduleResultFailed         ScheduleResult = "failed"
	ScheduleResultSkippedRunning ScheduleResult = "skipped_running"
)

// ScheduleState is the persisted schedule configuration plus its derived
// run history. NextRunAt, once computed, is always strictly in the future
// relative to the computation instant.
type ScheduleState struct {
	Config     ScheduleConfig `json:"config"`
	NextRunAt  *time.Time     `json:"next_run_at,omitempty"`
	LastRunAt  *time.Time     `json:"last_run_at,omitempty"`
	LastResult ScheduleResult `json:"last_result,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
