// Package automation drives batches of ready work items through the
// production workflow without supervision. The process owns at most one run
// at a time; items inside a run are processed strictly one after another
// because each one performs several dependent multi-second external calls.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/clipline/clipline/pkg/eventbus"
	"github.com/clipline/clipline/pkg/events"
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
	"github.com/clipline/clipline/pkg/protocol"
)

// ErrRunActive is returned when StartRun is called while a run owns the
// loop. Runs never queue behind each other.
var ErrRunActive = errors.New("an automation run is already active")

// ErrNoDefaults is returned when neither a recent workflow nor a pinned
// template snapshot can supply run defaults.
var ErrNoDefaults = errors.New("no template defaults available")

// WorkflowDriver is the slice of the workflow service the runner needs.
type WorkflowDriver interface {
	Start(ctx context.Context, owner string, brief models.Brief, options models.RenderOptions) (*models.VideoWorkflow, error)
	Advance(ctx context.Context, id string) (*models.VideoWorkflow, error)
}

// maxStageAdvances bounds the per-item advance loop as a runaway guard; a
// healthy workflow reaches the terminal stage in three advances.
const maxStageAdvances = 6

// Runner owns the single global automation run.
type Runner struct {
	persistence persistence.Persistence
	workflows   WorkflowDriver
	source      protocol.ItemSource
	uploader    protocol.Uploader
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer

	defaultTags []string

	mu            sync.Mutex
	runID         string
	operatorID    string
	phase         models.RunPhase
	stopRequested bool
	counts        models.RunCounts
	currentItemID string
	lastError     string
	startedAt     *time.Time
	finishedAt    *time.Time
	log           *models.RunLog
}

// RunnerOption configures optional Runner behavior.
type RunnerOption func(*Runner)

// WithDefaultTags sets the base tag set merged into every item's tags.
func WithDefaultTags(tags []string) RunnerOption {
	return func(r *Runner) {
		r.defaultTags = tags
	}
}

// NewRunner constructs the automation runner.
func NewRunner(
	p persistence.Persistence,
	workflows WorkflowDriver,
	source protocol.ItemSource,
	uploader protocol.Uploader,
	eventBus eventbus.EventPublisher,
	logger *slog.Logger,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		persistence: p,
		workflows:   workflows,
		source:      source,
		uploader:    uploader,
		eventBus:    eventBus,
		logger:      logger.With("module", "automation"),
		tracer:      otel.Tracer("clipline/automation"),
		phase:       models.RunPhaseIdle,
		log:         models.NewRunLog(models.DefaultRunLogCapacity),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// StartRun begins a run with the given configuration. It returns
// ErrRunActive while a run owns the loop, without touching the previous
// run's counts or logs. The run itself executes synchronously; callers
// wanting a background run wrap StartRun in a goroutine and read State.
func (r *Runner) StartRun(ctx context.Context, config models.ScheduleConfig) error {
	config.Normalize()

	r.mu.Lock()
	if r.phase.Active() {
		r.mu.Unlock()

		return ErrRunActive
	}

	now := time.Now().UTC()
	r.runID = uuid.NewString()
	r.operatorID = config.OperatorID
	r.phase = models.RunPhaseRunning
	r.stopRequested = false
	r.counts = models.RunCounts{}
	r.currentItemID = ""
	r.lastError = ""
	r.startedAt = &now
	r.finishedAt = nil
	r.log = models.NewRunLog(models.DefaultRunLogCapacity)
	runID := r.runID
	r.mu.Unlock()

	r.publish(ctx, events.RunStarted{
		BaseEvent:  r.baseEvent(events.RunStartedEvent),
		RunID:      runID,
		OperatorID: config.OperatorID,
	})

	err := r.run(ctx, config)

	r.mu.Lock()
	finished := time.Now().UTC()
	r.finishedAt = &finished
	r.currentItemID = ""

	if err != nil {
		r.phase = models.RunPhaseFailed
		r.lastError = err.Error()
	} else {
		r.phase = models.RunPhaseCompleted
	}

	phase := r.phase
	counts := r.counts
	r.mu.Unlock()

	finishedEvent := events.RunFinished{
		BaseEvent: r.baseEvent(events.RunFinishedEvent),
		RunID:     runID,
		Phase:     phase,
		Counts:    counts,
	}
	if err != nil {
		finishedEvent.Error = err.Error()
	}

	r.publish(ctx, finishedEvent)

	return err
}

// run executes the discovery/processing loop. Ready items are re-listed at
// the top of every iteration so records marked ready or unready mid-run are
// reflected; items already handled this run are skipped because not every
// mode unmarks them on the source (a stage_only run marks nothing).
func (r *Runner) run(ctx context.Context, config models.ScheduleConfig) error {
	defaults, err := r.resolveDefaults(ctx, config)
	if err != nil {
		r.appendLog("error", err.Error())

		return err
	}

	handled := map[string]bool{}
	started := false

	for len(handled) < config.ItemsPerRun {
		// Stop is cooperative; an in-flight item always finishes before
		// the run stops.
		if r.stopWanted() {
			r.appendLog("info", "stop requested, ending run")

			break
		}

		items, err := r.source.ListReadyItems(ctx, config.SheetRef)
		if err != nil {
			r.appendLog("error", fmt.Sprintf("item discovery failed: %v", err))

			return fmt.Errorf("item discovery failed: %w", err)
		}

		var item *models.WorkItem

		pending := 0

		for _, candidate := range items {
			if handled[candidate.ID] {
				continue
			}

			pending++

			if item == nil {
				item = candidate
			}
		}

		r.updateDiscovery(len(handled), pending, config.ItemsPerRun)

		if !started {
			started = true

			r.appendLog("info", fmt.Sprintf("run started: %d items",
				min(pending, config.ItemsPerRun)))
		}

		if item == nil {
			break
		}

		handled[item.ID] = true
		r.setCurrentItem(item.ID)

		if err := r.processOneItem(ctx, item, config, defaults); err != nil {
			r.countFailure()
			r.appendLog("error", fmt.Sprintf("item %s: %v", item.ID, err))

			if fatal(err) {
				return fmt.Errorf("fatal error on item %s: %w", item.ID, err)
			}

			continue
		}

		r.countSuccess(config.UploadMode == models.UploadModePublish)
	}

	r.appendLog("info", "run finished")

	return nil
}

// RequestStop asks the active run to end after the current item. It is a
// no-op when no run is active.
func (r *Runner) RequestStop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != models.RunPhaseRunning {
		return
	}

	r.phase = models.RunPhaseStopping
	r.stopRequested = true
}

// State returns a deep-copied snapshot of the run, safe to read while the
// loop mutates its live state.
func (r *Runner) State() models.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := models.RunState{
		ID:            r.runID,
		Phase:         r.phase,
		StopRequested: r.stopRequested,
		Counts:        r.counts,
		CurrentItemID: r.currentItemID,
		LastError:     r.lastError,
		Logs:          r.log.Snapshot(),
	}

	if r.startedAt != nil {
		started := *r.startedAt
		state.StartedAt = &started
	}

	if r.finishedAt != nil {
		finished := *r.finishedAt
		state.FinishedAt = &finished
	}

	return state
}

// Active reports whether a run currently owns the loop.
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.phase.Active()
}

// resolveDefaults picks the render options, brief defaults (style, voice,
// scene count) and template source identity for this run: the most recently
// updated workflow, or the pinned template snapshot when the schedule asks
// for it or no workflow exists yet.
func (r *Runner) resolveDefaults(ctx context.Context, config models.ScheduleConfig) (models.TemplateSnapshot, error) {
	if config.TemplateMode == models.TemplateModeLatestWorkflow {
		recent, err := r.persistence.WorkflowRepository().MostRecent(ctx)
		if err == nil {
			return models.TemplateSnapshot{
				RenderOptions: recent.RenderOptions,
				SourceTitle:   recent.Input.Title,
				SourceTopic:   recent.Input.Topic,
				Style:         recent.Input.Style,
				Voice:         recent.Input.Voice,
				SceneCount:    recent.Input.SceneCount,
			}, nil
		}

		if !errors.Is(err, persistence.ErrWorkflowNotFound) {
			return models.TemplateSnapshot{}, fmt.Errorf("failed to resolve defaults: %w", err)
		}
	}

	snapshot, err := r.persistence.TemplateRepository().Get(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrTemplateNotFound) {
			return models.TemplateSnapshot{}, ErrNoDefaults
		}

		return models.TemplateSnapshot{}, fmt.Errorf("failed to resolve defaults: %w", err)
	}

	return *snapshot, nil
}

// updateDiscovery refreshes the discovered/remaining counts after a listing,
// capped at the run's item budget.
func (r *Runner) updateDiscovery(handled, pending, limit int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	discovered := handled + pending
	if discovered > limit {
		discovered = limit
	}

	r.counts.Discovered = discovered
	r.counts.Remaining = discovered - handled
}

func (r *Runner) stopWanted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stopRequested
}

func (r *Runner) setCurrentItem(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currentItemID = id
}

func (r *Runner) countFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts.Processed++
	r.counts.Failed++
	r.counts.Remaining--
}

func (r *Runner) countSuccess(uploaded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts.Processed++
	r.counts.Remaining--

	if uploaded {
		r.counts.Uploaded++
	}
}

func (r *Runner) appendLog(level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Append(level, message)
}

func (r *Runner) publish(ctx context.Context, event eventbus.Event) {
	if r.eventBus == nil {
		return
	}

	if err := r.eventBus.Publish(ctx, r.runID, event); err != nil {
		r.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "error", err)
	}
}

func (r *Runner) baseEvent(eventType events.EventType) events.BaseEvent {
	id := ""
	if bus, ok := r.eventBus.(eventbus.EventBus); ok {
		id = bus.GenerateID()
	}

	return events.BaseEvent{ID: id, Type: eventType, Timestamp: time.Now().UTC()}
}
