package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOptions_NormalizeDefaults(t *testing.T) {
	opts := RenderOptions{}
	opts.Normalize()

	assert.Equal(t, DefaultSubtitleFont, opts.Subtitle.FontFamily)
	assert.Equal(t, DefaultFontSize, opts.Subtitle.FontSize)
	assert.Equal(t, DefaultDensity, opts.Subtitle.Density)
	assert.Equal(t, DefaultTitlePosition, opts.Overlay.TitlePosition)
	assert.Equal(t, DefaultMotionPreset, opts.Overlay.MotionPreset)
	assert.InDelta(t, DefaultFocus, opts.Overlay.FocusX, 0.0001)
	assert.Equal(t, DefaultFrameRate, opts.Overlay.FrameRate)
	assert.Equal(t, DefaultCanvasLayout, opts.Overlay.CanvasLayout)
}

func TestRenderOptions_NormalizeClamps(t *testing.T) {
	opts := RenderOptions{
		Subtitle: SubtitleOptions{
			FontSize:        500,
			OutlineWidth:    99,
			ShadowDepth:     -3,
			TimingOffsetSec: 12,
			Density:         "extreme",
		},
		Overlay: OverlayOptions{
			MotionSpeed:   50,
			DriftPercent:  75,
			ZoomFactor:    9,
			FrameRate:     25,
			CanvasLayout:  "circular",
			TitlePosition: "sideways",
			TextLayers:    []TextLayer{{Text: "x", X: 2, Y: -1, FontSize: 500}},
		},
	}
	opts.Normalize()

	assert.Equal(t, 80, opts.Subtitle.FontSize)
	assert.Equal(t, 8, opts.Subtitle.OutlineWidth)
	assert.Equal(t, 0, opts.Subtitle.ShadowDepth)
	assert.InDelta(t, 5.0, opts.Subtitle.TimingOffsetSec, 0.0001)
	assert.Equal(t, DefaultDensity, opts.Subtitle.Density)
	assert.InDelta(t, 5.0, opts.Overlay.MotionSpeed, 0.0001)
	assert.InDelta(t, 20.0, opts.Overlay.DriftPercent, 0.0001)
	assert.InDelta(t, 2.0, opts.Overlay.ZoomFactor, 0.0001)
	assert.Equal(t, DefaultFrameRate, opts.Overlay.FrameRate)
	assert.Equal(t, DefaultCanvasLayout, opts.Overlay.CanvasLayout)
	assert.Equal(t, DefaultTitlePosition, opts.Overlay.TitlePosition)
	assert.InDelta(t, 1.0, opts.Overlay.TextLayers[0].X, 0.0001)
	assert.InDelta(t, 0.0, opts.Overlay.TextLayers[0].Y, 0.0001)
	assert.Equal(t, 80, opts.Overlay.TextLayers[0].FontSize)
}

func TestRenderOptions_NormalizeIdempotent(t *testing.T) {
	opts := RenderOptions{Subtitle: SubtitleOptions{FontSize: 30}}
	opts.Normalize()
	first := opts
	opts.Normalize()

	assert.Equal(t, first, opts)
}

func TestParseRenderOptionsJSON(t *testing.T) {
	doc := []byte(`{"subtitle":{"font_size":30},"overlay":{"motion_preset":"pan"}}`)

	opts, err := ParseRenderOptionsJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, 30, opts.Subtitle.FontSize)
	assert.Equal(t, "pan", opts.Overlay.MotionPreset)
	// Absent fields are completed with defaults.
	assert.Equal(t, DefaultCanvasLayout, opts.Overlay.CanvasLayout)
}

func TestParseRenderOptionsJSON_BadShape(t *testing.T) {
	cases := []string{
		`{"subtitle":{"font_size":"huge"}}`,
		`{"overlay":{"text_layers":[{"x":0.5}]}}`,
		`{"unknown_section":{}}`,
	}

	for _, doc := range cases {
		_, err := ParseRenderOptionsJSON([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidRenderOptionsDocument, doc)
	}
}

func TestValidateScenes(t *testing.T) {
	scenes := makeScenes(4)
	require.NoError(t, ValidateScenes(scenes))
}

func TestValidateScenes_CountOutOfRange(t *testing.T) {
	assert.ErrorIs(t, ValidateScenes(makeScenes(2)), ErrInvalidSceneSplit)
	assert.ErrorIs(t, ValidateScenes(makeScenes(13)), ErrInvalidSceneSplit)
}

func TestValidateScenes_BadIndexOrder(t *testing.T) {
	scenes := makeScenes(4)
	scenes[2].Index = 7

	assert.ErrorIs(t, ValidateScenes(scenes), ErrInvalidSceneSplit)
}

func TestValidateScenes_EmptyFields(t *testing.T) {
	scenes := makeScenes(3)
	scenes[1].ImagePrompt = ""

	assert.ErrorIs(t, ValidateScenes(scenes), ErrInvalidSceneSplit)
}

func TestVideoWorkflow_ResetArtifactsFrom(t *testing.T) {
	wf := &VideoWorkflow{
		Scenes:     makeScenes(3),
		TTSRef:     "tts-1",
		PreviewRef: "prev-1",
		FinalRef:   "final-1",
	}
	for _, s := range wf.Scenes {
		s.ImageRef = "img"
	}

	wf.ResetArtifactsFrom(StageVideoReview)
	assert.Empty(t, wf.FinalRef)
	assert.Equal(t, "prev-1", wf.PreviewRef)

	wf.FinalRef = "final-1"
	wf.ResetArtifactsFrom(StageAssetsReview)
	assert.Empty(t, wf.PreviewRef)
	assert.Empty(t, wf.FinalRef)
	assert.True(t, wf.HasAllSceneImages())

	wf.ResetArtifactsFrom(StageSceneSplitReview)
	assert.Empty(t, wf.TTSRef)
	assert.False(t, wf.HasAllSceneImages())
}

func TestScheduleConfig_NextRunDaily(t *testing.T) {
	cfg := ScheduleConfig{Cadence: CadenceDaily, DailyTime: "09:00"}

	// Computed before today's slot: today 09:00.
	at := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	next, err := cfg.NextRun(at)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), next)

	// Computed after today's slot: tomorrow 09:00.
	at = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	next, err = cfg.NextRun(at)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC), next)
}

func TestScheduleConfig_NextRunInterval(t *testing.T) {
	cfg := ScheduleConfig{Cadence: CadenceIntervalHours, IntervalHours: 6}

	at := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	next, err := cfg.NextRun(at)
	require.NoError(t, err)
	assert.Equal(t, at.Add(6*time.Hour), next)
	assert.True(t, next.After(at))
}

func TestScheduleConfig_NextRunBadInput(t *testing.T) {
	cfg := ScheduleConfig{Cadence: CadenceDaily, DailyTime: "25:99"}
	_, err := cfg.NextRun(time.Now())
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	cfg = ScheduleConfig{Cadence: "weekly"}
	_, err = cfg.NextRun(time.Now())
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestScheduleConfig_Normalize(t *testing.T) {
	cfg := ScheduleConfig{IntervalHours: 500, ItemsPerRun: 99}
	cfg.Normalize()

	assert.Equal(t, CadenceIntervalHours, cfg.Cadence)
	assert.Equal(t, 168, cfg.IntervalHours)
	assert.Equal(t, 20, cfg.ItemsPerRun)
	assert.Equal(t, "09:00", cfg.DailyTime)
	assert.Equal(t, UploadModeStageOnly, cfg.UploadMode)
	assert.Equal(t, TemplateModeLatestWorkflow, cfg.TemplateMode)
}

func TestRunLog_BoundedEviction(t *testing.T) {
	runLog := NewRunLog(3)
	for i := range 5 {
		runLog.Append("info", fmt.Sprintf("entry-%d", i))
	}

	entries := runLog.Snapshot()
	require.Len(t, entries, 3)
	assert.Equal(t, "entry-2", entries[0].Message)
	assert.Equal(t, "entry-4", entries[2].Message)
}

func TestStage_Order(t *testing.T) {
	assert.Equal(t, StageAssetsReview, StageSceneSplitReview.Next())
	assert.Equal(t, StageVideoReview, StageAssetsReview.Next())
	assert.Equal(t, StageFinalReady, StageVideoReview.Next())
	assert.Equal(t, StageFinalReady, StageFinalReady.Next())
	assert.True(t, StageSceneSplitReview.Index() < StageFinalReady.Index())
	assert.False(t, Stage("published").Valid())
}

func makeScenes(n int) []*WorkflowScene {
	scenes := make([]*WorkflowScene, 0, n)
	for i := range n {
		scenes = append(scenes, &WorkflowScene{
			Index:         i + 1,
			Title:         fmt.Sprintf("Scene %d", i+1),
			NarrationText: fmt.Sprintf("Narration %d", i+1),
			ImagePrompt:   fmt.Sprintf("Prompt %d", i+1),
		})
	}

	return scenes
}
