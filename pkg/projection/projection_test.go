package projection

import (
	"testing"

	"github.com/clipline/clipline/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestFromWorkflow_StageMapping(t *testing.T) {
	cases := []struct {
		name     string
		stage    models.Stage
		status   models.Status
		want     models.RowStatus
		progress int
	}{
		{"script review idle", models.StageSceneSplitReview, models.StatusIdle, models.RowStatusScriptReview, 25},
		{"building assets", models.StageSceneSplitReview, models.StatusProcessing, models.RowStatusGeneratingImages, 45},
		{"assets review idle", models.StageAssetsReview, models.StatusIdle, models.RowStatusAssetsReview, 60},
		{"rendering preview", models.StageAssetsReview, models.StatusProcessing, models.RowStatusVideoRendering, 85},
		{"video review idle", models.StageVideoReview, models.StatusIdle, models.RowStatusVideoReview, 90},
		{"ready", models.StageFinalReady, models.StatusIdle, models.RowStatusReady, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wf := &models.VideoWorkflow{ID: "wf", Stage: tc.stage, Status: tc.status}
			row := FromWorkflow(wf)

			assert.Equal(t, tc.want, row.Status)
			assert.Equal(t, tc.progress, row.Progress)
		})
	}
}

func TestFromWorkflow_FailedDominates(t *testing.T) {
	wf := &models.VideoWorkflow{
		ID:     "wf",
		Stage:  models.StageAssetsReview,
		Status: models.StatusFailed,
		Error:  "tts provider unavailable",
	}

	row := FromWorkflow(wf)
	assert.Equal(t, models.RowStatusFailed, row.Status)
	assert.Equal(t, 100, row.Progress)
	assert.Equal(t, "tts provider unavailable", row.Error)
}

func TestFromWorkflow_VideoRefPrefersFinal(t *testing.T) {
	wf := &models.VideoWorkflow{ID: "wf", Stage: models.StageVideoReview, PreviewRef: "preview.mp4"}
	assert.Equal(t, "preview.mp4", FromWorkflow(wf).VideoRef)

	wf.FinalRef = "final.mp4"
	assert.Equal(t, "final.mp4", FromWorkflow(wf).VideoRef)
}

func TestFields_CoversDocumentedSet(t *testing.T) {
	row := models.WorkflowRow{Status: models.RowStatusReady, Progress: 100, VideoRef: "v"}
	fields := Fields(row)

	assert.Len(t, fields, 4)
	assert.Equal(t, "ready", fields["status"])
	assert.Equal(t, 100, fields["progress"])
}
