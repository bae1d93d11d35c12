package web_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clipline/clipline/pkg/automation"
	"github.com/clipline/clipline/pkg/mocks"
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence/file"
	"github.com/clipline/clipline/pkg/scheduler"
	"github.com/clipline/clipline/pkg/web"
	"github.com/clipline/clipline/pkg/workflow"
)

type webFixture struct {
	app       *fiber.App
	persist   *file.Persistence
	generator *mocks.MockContentGenerator
	renderer  *mocks.MockRenderer
}

func setupTestApp(t *testing.T) *webFixture {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())
	generator := &mocks.MockContentGenerator{}
	renderer := &mocks.MockRenderer{}
	source := &mocks.MockItemSource{}
	uploader := &mocks.MockUploader{}

	workflows := workflow.NewService(persist, generator, renderer, nil, slog.Default())
	runner := automation.NewRunner(persist, workflows, source, uploader, nil, slog.Default())
	sched := scheduler.NewScheduler(persist, runner, slog.Default())
	t.Cleanup(sched.Stop)

	handlers := web.NewAPIHandlers(workflows, runner, sched,
		validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	handlers.Register(app)

	return &webFixture{
		app:       app,
		persist:   persist,
		generator: generator,
		renderer:  renderer,
	}
}

func (f *webFixture) request(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(web.OperatorHeader, "op-1")

	resp, err := f.app.Test(req)
	require.NoError(t, err)

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &out))

	return out
}

func webScenes(n int) []*models.WorkflowScene {
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

func TestMissingOperatorHeaderIsUnauthorized(t *testing.T) {
	f := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/automation/status", nil)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateWorkflow(t *testing.T) {
	f := setupTestApp(t)

	f.generator.On("SplitScenes", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(webScenes(3), nil).Once()

	resp := f.request(t, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Title:     "Morning coffee",
		Narration: "some narration",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[models.VideoWorkflow](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "op-1", created.Owner)
	assert.Equal(t, models.StageSceneSplitReview, created.Stage)
	assert.Equal(t, models.StatusIdle, created.Status)
	assert.Len(t, created.Scenes, 3)
}

func TestCreateWorkflowRejectsMissingTitle(t *testing.T) {
	f := setupTestApp(t)

	resp := f.request(t, http.MethodPost, "/workflows/",
		web.CreateWorkflowRequest{Narration: "text"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateWorkflowRejectsBadRenderOptions(t *testing.T) {
	f := setupTestApp(t)

	resp := f.request(t, http.MethodPost, "/workflows/", map[string]any{
		"title":          "Morning coffee",
		"narration":      "text",
		"render_options": map[string]any{"unknown_field": true},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListWorkflowsFiltersByOperator(t *testing.T) {
	f := setupTestApp(t)

	f.generator.On("SplitScenes", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(webScenes(3), nil).Once()

	resp := f.request(t, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Title:     "Morning coffee",
		Narration: "text",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.VideoWorkflow](t, resp)

	// Another operator's workflow must not leak into the listing.
	require.NoError(t, f.persist.WorkflowRepository().Save(t.Context(), &models.VideoWorkflow{
		ID: "wf-other", Owner: "op-2",
	}))

	resp = f.request(t, http.MethodGet, "/workflows/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	listed := decode[[]models.VideoWorkflow](t, resp)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestGetWorkflowNotFound(t *testing.T) {
	f := setupTestApp(t)

	resp := f.request(t, http.MethodGet, "/workflows/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateWorkflowRejectsForwardStage(t *testing.T) {
	f := setupTestApp(t)

	f.generator.On("SplitScenes", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(webScenes(3), nil).Once()

	resp := f.request(t, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Title:     "Morning coffee",
		Narration: "text",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.VideoWorkflow](t, resp)

	stage := models.StageVideoReview
	resp = f.request(t, http.MethodPatch, "/workflows/"+created.ID,
		web.UpdateWorkflowRequest{Stage: &stage})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdvanceWorkflowConflictWhileProcessing(t *testing.T) {
	f := setupTestApp(t)

	f.generator.On("SplitScenes", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(webScenes(3), nil).Once()

	resp := f.request(t, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Title:     "Morning coffee",
		Narration: "text",
	})
	created := decode[models.VideoWorkflow](t, resp)

	stored, err := f.persist.WorkflowRepository().GetByID(t.Context(), created.ID)
	require.NoError(t, err)
	stored.Status = models.StatusProcessing
	require.NoError(t, f.persist.WorkflowRepository().Save(t.Context(), stored))

	resp = f.request(t, http.MethodPost, "/workflows/"+created.ID+"/advance", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRunStatusIdleByDefault(t *testing.T) {
	f := setupTestApp(t)

	resp := f.request(t, http.MethodGet, "/automation/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state := decode[models.RunState](t, resp)
	assert.Equal(t, models.RunPhaseIdle, state.Phase)
}

func TestScheduleRoundTrip(t *testing.T) {
	f := setupTestApp(t)

	resp := f.request(t, http.MethodGet, "/automation/schedule", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.request(t, http.MethodPut, "/automation/schedule", web.UpdateScheduleRequest{
		Enabled:       true,
		Cadence:       models.CadenceIntervalHours,
		IntervalHours: 6,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state := decode[models.ScheduleState](t, resp)
	assert.Equal(t, "op-1", state.Config.OperatorID)
	assert.NotNil(t, state.NextRunAt)

	resp = f.request(t, http.MethodGet, "/automation/schedule", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	fetched := decode[models.ScheduleState](t, resp)
	assert.Equal(t, 6, fetched.Config.IntervalHours)
}

func TestTemplateRoundTrip(t *testing.T) {
	f := setupTestApp(t)

	resp := f.request(t, http.MethodGet, "/automation/template", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	f.generator.On("SplitScenes", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(webScenes(3), nil).Once()

	resp = f.request(t, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Title:     "Morning coffee",
		Topic:     "coffee",
		Narration: "text",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.VideoWorkflow](t, resp)

	resp = f.request(t, http.MethodPut, "/automation/template",
		web.PinTemplateRequest{WorkflowID: created.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pinned := decode[models.TemplateSnapshot](t, resp)
	assert.Equal(t, "Morning coffee", pinned.SourceTitle)

	resp = f.request(t, http.MethodGet, "/automation/template", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	fetched := decode[models.TemplateSnapshot](t, resp)
	assert.Equal(t, "coffee", fetched.SourceTopic)
	assert.Equal(t, models.DefaultCanvasLayout, fetched.RenderOptions.Overlay.CanvasLayout)
}

func TestScheduleRejectsBadDailyTime(t *testing.T) {
	f := setupTestApp(t)

	resp := f.request(t, http.MethodPut, "/automation/schedule", web.UpdateScheduleRequest{
		Enabled:   true,
		Cadence:   models.CadenceDaily,
		DailyTime: "not-a-time",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
