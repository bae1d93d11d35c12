// Package projection derives flat monitoring rows from workflow state.
// A projection is transient and reconstructible: it is recomputed whenever
// the originating workflow changes and is never a source of truth.
package projection

import (
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
)

// progressFor maps each row status to its fixed progress percentage.
var progressFor = map[models.RowStatus]int{
	models.RowStatusQueued:           5,
	models.RowStatusScriptReview:     25,
	models.RowStatusGeneratingImages: 45,
	models.RowStatusAssetsReview:     60,
	models.RowStatusVideoRendering:   85,
	models.RowStatusVideoReview:      90,
	models.RowStatusReady:            100,
	models.RowStatusFailed:           100,
}

// Progress returns the fixed progress percentage for a row status.
func Progress(status models.RowStatus) int {
	return progressFor[status]
}

// FromWorkflow computes the monitoring row for a workflow.
func FromWorkflow(workflow *models.VideoWorkflow) models.WorkflowRow {
	status := statusFor(workflow)

	row := models.WorkflowRow{
		ID:       workflow.ID,
		Status:   status,
		Progress: Progress(status),
		Error:    workflow.Error,
	}

	switch {
	case workflow.FinalRef != "":
		row.VideoRef = workflow.FinalRef
	case workflow.PreviewRef != "":
		row.VideoRef = workflow.PreviewRef
	}

	return row
}

// Fields flattens a row into the partial-update field map the row store
// accepts.
func Fields(row models.WorkflowRow) map[string]any {
	return map[string]any{
		persistence.RowFieldStatus:   string(row.Status),
		persistence.RowFieldProgress: row.Progress,
		persistence.RowFieldVideoRef: row.VideoRef,
		persistence.RowFieldError:    row.Error,
	}
}

func statusFor(workflow *models.VideoWorkflow) models.RowStatus {
	if workflow.Status == models.StatusFailed {
		return models.RowStatusFailed
	}

	switch workflow.Stage {
	case models.StageSceneSplitReview:
		if workflow.Status == models.StatusProcessing {
			return models.RowStatusGeneratingImages
		}

		return models.RowStatusScriptReview
	case models.StageAssetsReview:
		if workflow.Status == models.StatusProcessing {
			return models.RowStatusVideoRendering
		}

		return models.RowStatusAssetsReview
	case models.StageVideoReview:
		if workflow.Status == models.StatusProcessing {
			return models.RowStatusVideoRendering
		}

		return models.RowStatusVideoReview
	case models.StageFinalReady:
		return models.RowStatusReady
	default:
		return models.RowStatusQueued
	}
}
