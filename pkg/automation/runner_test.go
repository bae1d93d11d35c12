package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clipline/clipline/pkg/mocks"
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence/file"
	"github.com/clipline/clipline/pkg/workflow"
)

type runnerFixture struct {
	runner    *Runner
	persist   *file.Persistence
	generator *mocks.MockContentGenerator
	renderer  *mocks.MockRenderer
	source    *mocks.MockItemSource
	uploader  *mocks.MockUploader
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())
	generator := &mocks.MockContentGenerator{}
	renderer := &mocks.MockRenderer{}
	source := &mocks.MockItemSource{}
	uploader := &mocks.MockUploader{}

	workflows := workflow.NewService(persist, generator, renderer, nil, slog.Default())
	runner := NewRunner(persist, workflows, source, uploader, nil, slog.Default())

	return &runnerFixture{
		runner:    runner,
		persist:   persist,
		generator: generator,
		renderer:  renderer,
		source:    source,
		uploader:  uploader,
	}
}

func (f *runnerFixture) pinTemplate(t *testing.T) {
	t.Helper()

	options := models.RenderOptions{}
	options.Normalize()

	err := f.persist.TemplateRepository().Save(context.Background(), &models.TemplateSnapshot{
		RenderOptions: options,
		SourceTitle:   "Template Source",
		SourceTopic:   "templates",
		SavedAt:       time.Now().UTC(),
	})
	require.NoError(t, err)
}

func runnerScenes(n int) []*models.WorkflowScene {
	scenes := make([]*models.WorkflowScene, n)
	for i := range scenes {
		scenes[i] = &models.WorkflowScene{
			Index:         i + 1,
			Title:         fmt.Sprintf("Scene %d", i+1),
			NarrationText: fmt.Sprintf("Narration %d", i+1),
			ImagePrompt:   fmt.Sprintf("Prompt %d", i+1),
		}
	}

	return scenes
}

// expectFullProduction wires the generator and renderer mocks for one item
// that runs cleanly from brief to final.
func (f *runnerFixture) expectFullProduction() {
	f.generator.On("SplitScenes", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(runnerScenes(3), nil).Once()
	f.generator.On("GenerateImages", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything).Return([]string{"img-1", "img-2", "img-3"}, nil).Once()
	f.generator.On("GenerateSpeech", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything).Return("tts-1", nil).Once()
	f.renderer.On("Render", mock.Anything, mock.Anything).Return("preview-1", nil).Once()
	f.renderer.On("Render", mock.Anything, mock.Anything).Return("final-1", nil).Once()
}

func TestStageOnlyRunNeverUploads(t *testing.T) {
	f := newRunnerFixture(t)
	f.pinTemplate(t)

	f.source.On("ListReadyItems", mock.Anything, "sheet-1").Return([]*models.WorkItem{
		{
			ID:          "x1",
			Keyword:     "coffee",
			Subject:     "Cold Brew 101",
			Description: "#coffee #brew",
			Narration:   "Cold brew is slow-steeped coffee.",
		},
	}, nil)

	f.expectFullProduction()

	err := f.runner.StartRun(context.Background(), models.ScheduleConfig{
		OperatorID: "op-1",
		SheetRef:   "sheet-1",
		UploadMode: models.UploadModeStageOnly,
	})
	require.NoError(t, err)

	state := f.runner.State()
	assert.Equal(t, models.RunPhaseCompleted, state.Phase)
	assert.Equal(t, 1, state.Counts.Discovered)
	assert.Equal(t, 1, state.Counts.Processed)
	assert.Equal(t, 0, state.Counts.Uploaded)
	assert.Equal(t, 0, state.Counts.Failed)
	assert.Equal(t, 0, state.Counts.Remaining)

	f.uploader.AssertNotCalled(t, "Upload",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.source.AssertNotCalled(t, "MarkUploaded", mock.Anything, mock.Anything, mock.Anything)

	recent, err := f.persist.WorkflowRepository().MostRecent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StageFinalReady, recent.Stage)
}

func TestPublishRunUploadsAndMarksItem(t *testing.T) {
	f := newRunnerFixture(t)
	f.pinTemplate(t)

	f.source.On("ListReadyItems", mock.Anything, mock.Anything).Return([]*models.WorkItem{
		{ID: "x1", Keyword: "coffee", Subject: "Cold Brew 101", Description: "#coffee #brew"},
	}, nil)

	f.generator.On("GenerateNarration", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything).Return("Generated narration.", nil).Once()
	f.expectFullProduction()

	f.uploader.On("Upload", mock.Anything, "Cold Brew 101", mock.Anything,
		[]string{"coffee", "brew"}, "final-1", "unlisted").
		Return("https://videos.example/v/1", nil).Once()
	f.source.On("MarkUploaded", mock.Anything, "x1", "https://videos.example/v/1").
		Return(nil).Once()

	err := f.runner.StartRun(context.Background(), models.ScheduleConfig{
		OperatorID:    "op-1",
		UploadMode:    models.UploadModePublish,
		PrivacyStatus: "unlisted",
	})
	require.NoError(t, err)

	state := f.runner.State()
	assert.Equal(t, 1, state.Counts.Uploaded)
	f.uploader.AssertExpectations(t)
	f.source.AssertExpectations(t)
}

func TestRunDefaultsCarryBriefSettings(t *testing.T) {
	f := newRunnerFixture(t)

	// The operator's latest workflow establishes style, voice and scene
	// count; automated items must inherit all three.
	options := models.RenderOptions{}
	options.Normalize()

	err := f.persist.WorkflowRepository().Save(context.Background(), &models.VideoWorkflow{
		ID:     "wf-seed",
		Owner:  "op-1",
		Stage:  models.StageFinalReady,
		Status: models.StatusIdle,
		Input: models.Brief{
			Title:      "Seed video",
			Style:      "anime",
			Voice:      "nova",
			SceneCount: 5,
		},
		RenderOptions: options,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)

	f.source.On("ListReadyItems", mock.Anything, mock.Anything).Return([]*models.WorkItem{
		{ID: "x1", Subject: "Cold Brew 101", Narration: "Cold brew is slow."},
	}, nil)

	f.generator.On("SplitScenes", mock.Anything, "Cold Brew 101", mock.Anything,
		"anime", mock.Anything, 5).Return(runnerScenes(3), nil).Once()
	f.generator.On("GenerateImages", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything).Return([]string{"img-1", "img-2", "img-3"}, nil).Once()
	f.generator.On("GenerateSpeech", mock.Anything, mock.Anything, mock.Anything,
		"nova", mock.Anything).Return("tts-1", nil).Once()
	f.renderer.On("Render", mock.Anything, mock.Anything).Return("ref", nil).Twice()

	err = f.runner.StartRun(context.Background(), models.ScheduleConfig{
		OperatorID:   "op-1",
		UploadMode:   models.UploadModeStageOnly,
		TemplateMode: models.TemplateModeLatestWorkflow,
	})
	require.NoError(t, err)

	f.generator.AssertExpectations(t)
}

func TestRequestStopEndsRunAfterCurrentItem(t *testing.T) {
	f := newRunnerFixture(t)
	f.pinTemplate(t)

	f.source.On("ListReadyItems", mock.Anything, mock.Anything).Return([]*models.WorkItem{
		{ID: "x1", Subject: "First", Narration: "n1"},
		{ID: "x2", Subject: "Second", Narration: "n2"},
	}, nil)

	// Stop lands while the first item is in flight; that item finishes and
	// the run ends before the second is touched.
	f.generator.On("SplitScenes", mock.Anything, "First", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { f.runner.RequestStop() }).
		Return(runnerScenes(3), nil).Once()
	f.generator.On("GenerateImages", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything).Return([]string{"img-1", "img-2", "img-3"}, nil).Once()
	f.generator.On("GenerateSpeech", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything).Return("tts-1", nil).Once()
	f.renderer.On("Render", mock.Anything, mock.Anything).Return("ref", nil).Twice()

	err := f.runner.StartRun(context.Background(), models.ScheduleConfig{
		OperatorID: "op-1",
		UploadMode: models.UploadModeStageOnly,
	})
	require.NoError(t, err)

	state := f.runner.State()
	assert.Equal(t, models.RunPhaseCompleted, state.Phase)
	assert.Equal(t, 1, state.Counts.Processed)
	assert.Equal(t, 0, state.Counts.Failed)
	f.generator.AssertNotCalled(t, "SplitScenes", mock.Anything, "Second",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Stop on a finished run is a no-op.
	f.runner.RequestStop()
	assert.Equal(t, models.RunPhaseCompleted, f.runner.State().Phase)
}

func TestMidRunReadyItemsAreReflected(t *testing.T) {
	f := newRunnerFixture(t)
	f.pinTemplate(t)

	first := &models.WorkItem{ID: "x1", Subject: "First", Narration: "n1"}
	second := &models.WorkItem{ID: "x2", Subject: "Second", Narration: "n2"}

	// The second item is marked ready only after the run has started; the
	// per-iteration re-listing must pick it up.
	f.source.On("ListReadyItems", mock.Anything, mock.Anything).
		Return([]*models.WorkItem{first}, nil).Once()
	f.source.On("ListReadyItems", mock.Anything, mock.Anything).
		Return([]*models.WorkItem{first, second}, nil)

	f.expectFullProduction()
	f.expectFullProduction()

	err := f.runner.StartRun(context.Background(), models.ScheduleConfig{
		OperatorID: "op-1",
		UploadMode: models.UploadModeStageOnly,
	})
	require.NoError(t, err)

	state := f.runner.State()
	assert.Equal(t, models.RunPhaseCompleted, state.Phase)
	assert.Equal(t, 2, state.Counts.Discovered)
	assert.Equal(t, 2, state.Counts.Processed)
	assert.Equal(t, 0, state.Counts.Remaining)
}

func TestStartRunRejectsWhileActive(t *testing.T) {
	f := newRunnerFixture(t)

	f.runner.mu.Lock()
	f.runner.phase = models.RunPhaseRunning
	f.runner.counts = models.RunCounts{Processed: 2}
	f.runner.log.Append("info", "existing entry")
	f.runner.mu.Unlock()

	err := f.runner.StartRun(context.Background(), models.ScheduleConfig{OperatorID: "op-1"})
	assert.ErrorIs(t, err, ErrRunActive)

	// The rejected call must not disturb the active run's state.
	state := f.runner.State()
	assert.Equal(t, 2, state.Counts.Processed)
	assert.Len(t, state.Logs, 1)
}

func TestTransientFailureContinuesRun(t *testing.T) {
	f := newRunnerFixture(t)
	f.pinTemplate(t)

	f.source.On("ListReadyItems", mock.Anything, mock.Anything).Return([]*models.WorkItem{
		{ID: "x1", Subject: "First", Narration: "n1"},
		{ID: "x2", Subject: "Second", Narration: "n2"},
	}, nil)

	// First item fails at the scene split; second runs clean.
	f.generator.On("SplitScenes", mock.Anything, "First", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("model timeout")).Once()
	f.source.On("MarkFailed", mock.Anything, "x1", mock.Anything).Return(nil).Once()

	f.generator.On("SplitScenes", mock.Anything, "Second", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(runnerScenes(3), nil).Once()
	f.generator.On("GenerateImages", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything).Return([]string{"img-1", "img-2", "img-3"}, nil).Once()
	f.generator.On("GenerateSpeech", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything).Return("tts-1", nil).Once()
	f.renderer.On("Render", mock.Anything, mock.Anything).Return("ref", nil).Twice()

	err := f.runner.StartRun(context.Background(), models.ScheduleConfig{
		OperatorID: "op-1",
		UploadMode: models.UploadModeStageOnly,
	})
	require.NoError(t, err)

	state := f.runner.State()
	assert.Equal(t, models.RunPhaseCompleted, state.Phase)
	assert.Equal(t, 2, state.Counts.Processed)
	assert.Equal(t, 1, state.Counts.Failed)
	f.source.AssertExpectations(t)
}

func TestFatalFailureStopsRun(t *testing.T) {
	f := newRunnerFixture(t)
	f.pinTemplate(t)

	f.source.On("ListReadyItems", mock.Anything, mock.Anything).Return([]*models.WorkItem{
		{ID: "x1", Subject: "First", Narration: "n1"},
		{ID: "x2", Subject: "Second", Narration: "n2"},
	}, nil).Once()

	f.generator.On("SplitScenes", mock.Anything, "First", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("401 unauthorized: bad api key")).Once()
	f.source.On("MarkFailed", mock.Anything, "x1", mock.Anything).Return(nil).Once()

	err := f.runner.StartRun(context.Background(), models.ScheduleConfig{
		OperatorID: "op-1",
		UploadMode: models.UploadModeStageOnly,
	})
	require.Error(t, err)

	state := f.runner.State()
	assert.Equal(t, models.RunPhaseFailed, state.Phase)
	assert.Equal(t, 1, state.Counts.Processed)
	// The second item was never touched.
	f.generator.AssertNotCalled(t, "SplitScenes", mock.Anything, "Second",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestItemCapLimitsDiscoveredItems(t *testing.T) {
	f := newRunnerFixture(t)
	f.pinTemplate(t)

	items := make([]*models.WorkItem, 5)
	for i := range items {
		items[i] = &models.WorkItem{
			ID:        fmt.Sprintf("x%d", i+1),
			Subject:   fmt.Sprintf("Item %d", i+1),
			Narration: "n",
		}
	}

	f.source.On("ListReadyItems", mock.Anything, mock.Anything).Return(items, nil).Once()

	// Only the first item gets production wiring; the cap must prevent the
	// rest from being processed at all.
	f.expectFullProduction()

	err := f.runner.StartRun(context.Background(), models.ScheduleConfig{
		OperatorID:  "op-1",
		ItemsPerRun: 1,
		UploadMode:  models.UploadModeStageOnly,
	})
	require.NoError(t, err)

	state := f.runner.State()
	assert.Equal(t, 1, state.Counts.Discovered)
	assert.Equal(t, 1, state.Counts.Processed)
}

func TestRunWithoutDefaultsFails(t *testing.T) {
	f := newRunnerFixture(t)

	err := f.runner.StartRun(context.Background(), models.ScheduleConfig{OperatorID: "op-1"})
	assert.ErrorIs(t, err, ErrNoDefaults)
}

func TestExtractHashtags(t *testing.T) {
	tags := extractHashtags("#Coffee #COFFEE great stuff #brew-time")
	assert.Equal(t, []string{"coffee", "brew"}, tags)

	assert.Empty(t, extractHashtags("no hashtags here"))
}

func TestDeriveTags(t *testing.T) {
	tags := deriveTags([]string{"shorts"}, &models.WorkItem{
		Keyword:     "Coffee",
		Description: "#coffee #morning",
	})
	assert.Equal(t, []string{"shorts", "coffee", "morning"}, tags)
}

func TestFatalClassification(t *testing.T) {
	assert.True(t, fatal(errors.New("HTTP 403 Forbidden")))
	assert.True(t, fatal(errors.New("Invalid Credentials supplied")))
	assert.True(t, fatal(errors.New("quota exceeded")))
	assert.False(t, fatal(errors.New("connection reset by peer")))
	assert.False(t, fatal(errors.New("render timeout")))
}
