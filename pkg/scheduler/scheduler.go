// Package scheduler arms unattended automation runs on a per-operator
// cadence. Timers are single-shot and re-armed after every fire rather than
// periodic, which tolerates clock drift and enable/disable toggling.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
)

// RunStarter is the slice of the automation runner the scheduler drives.
type RunStarter interface {
	StartRun(ctx context.Context, config models.ScheduleConfig) error
	Active() bool
}

// Scheduler owns one timer per operator.
type Scheduler struct {
	persistence persistence.Persistence
	runner      RunStarter
	validate    *validator.Validate
	logger      *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	loaded map[string]bool
}

// NewScheduler constructs the scheduler.
func NewScheduler(p persistence.Persistence, runner RunStarter, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		persistence: p,
		runner:      runner,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("module", "scheduler"),
		timers:      make(map[string]*time.Timer),
		loaded:      make(map[string]bool),
	}
}

// EnsureStarted loads the operator's persisted schedule once and arms its
// timer when enabled. Operators without a stored schedule are left idle.
func (s *Scheduler) EnsureStarted(ctx context.Context, operatorID string) error {
	s.mu.Lock()
	if s.loaded[operatorID] {
		s.mu.Unlock()

		return nil
	}

	s.loaded[operatorID] = true
	s.mu.Unlock()

	state, err := s.persistence.ScheduleRepository().GetByOperator(ctx, operatorID)
	if err != nil {
		if persistence.IsScheduleNotFound(err) {
			return nil
		}

		return fmt.Errorf("failed to load schedule: %w", err)
	}

	if !state.Config.Enabled {
		return nil
	}

	return s.arm(ctx, state)
}

// GetState returns the operator's persisted schedule state.
func (s *Scheduler) GetState(ctx context.Context, operatorID string) (*models.ScheduleState, error) {
	return s.persistence.ScheduleRepository().GetByOperator(ctx, operatorID)
}

// UpdateConfig validates, normalizes and persists a new configuration, then
// re-arms the operator's timer. Disabling stops the timer but keeps the run
// history.
func (s *Scheduler) UpdateConfig(ctx context.Context, config models.ScheduleConfig) (*models.ScheduleState, error) {
	config.Normalize()

	if err := s.validate.Struct(config); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidSchedule, err)
	}

	state, err := s.persistence.ScheduleRepository().GetByOperator(ctx, config.OperatorID)
	if err != nil {
		if !persistence.IsScheduleNotFound(err) {
			return nil, fmt.Errorf("failed to load schedule: %w", err)
		}

		state = &models.ScheduleState{}
	}

	state.Config = config
	state.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.loaded[config.OperatorID] = true
	s.stopTimerLocked(config.OperatorID)
	s.mu.Unlock()

	if !config.Enabled {
		state.NextRunAt = nil

		if err := s.persistence.ScheduleRepository().Save(ctx, state); err != nil {
			return nil, fmt.Errorf("failed to save schedule: %w", err)
		}

		s.logger.InfoContext(ctx, "Schedule disabled", "operator_id", config.OperatorID)

		return state, nil
	}

	if err := s.arm(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Stop cancels every armed timer. Pending ticks are dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for operatorID := range s.timers {
		s.stopTimerLocked(operatorID)
	}
}

// arm computes the next run instant, persists it and starts the single-shot
// timer.
func (s *Scheduler) arm(ctx context.Context, state *models.ScheduleState) error {
	next, err := state.Config.NextRun(time.Now())
	if err != nil {
		return err
	}

	nextUTC := next.UTC()
	state.NextRunAt = &nextUTC

	if err := s.persistence.ScheduleRepository().Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}

	operatorID := state.Config.OperatorID

	s.mu.Lock()
	s.stopTimerLocked(operatorID)
	s.timers[operatorID] = time.AfterFunc(time.Until(next), func() {
		s.tick(operatorID)
	})
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Schedule armed",
		"operator_id", operatorID, "next_run_at", nextUTC)

	return nil
}

// tick runs when a timer fires: start a run unless one is active, record the
// outcome, then re-arm. The schedule is re-read so a concurrent UpdateConfig
// wins over the state captured at arm time.
func (s *Scheduler) tick(operatorID string) {
	ctx := context.Background()

	state, err := s.persistence.ScheduleRepository().GetByOperator(ctx, operatorID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Scheduled tick lost its schedule",
			"operator_id", operatorID, "error", err)

		return
	}

	if !state.Config.Enabled {
		return
	}

	now := time.Now().UTC()
	state.LastRunAt = &now
	state.LastError = ""

	switch {
	case s.runner.Active():
		state.LastResult = models.ScheduleResultSkippedRunning

		s.logger.InfoContext(ctx, "Scheduled run skipped, another run is active",
			"operator_id", operatorID)
	default:
		if err := s.runner.StartRun(ctx, state.Config); err != nil {
			state.LastResult = models.ScheduleResultFailed
			state.LastError = err.Error()

			s.logger.ErrorContext(ctx, "Scheduled run failed",
				"operator_id", operatorID, "error", err)
		} else {
			state.LastResult = models.ScheduleResultStarted
		}
	}

	if err := s.arm(ctx, state); err != nil {
		s.logger.ErrorContext(ctx, "Failed to re-arm schedule",
			"operator_id", operatorID, "error", err)
	}
}

func (s *Scheduler) stopTimerLocked(operatorID string) {
	if timer, ok := s.timers[operatorID]; ok {
		timer.Stop()
		delete(s.timers, operatorID)
	}
}
