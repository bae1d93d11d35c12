package main

import (
	"context"
	"log/slog"

	"github.com/clipline/clipline/pkg/eventbus"
	"github.com/clipline/clipline/pkg/events"
)

// subscribeLifecycleLog logs workflow and run lifecycle events so operators
// can follow production progress from the service log alone.
func subscribeLifecycleLog(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	err := bus.Handle(events.WorkflowStageAdvancedEvent, func(ctx context.Context, event any) error {
		if advanced, ok := event.(*events.WorkflowStageAdvanced); ok {
			logger.InfoContext(ctx, "Workflow advanced",
				"workflow_id", advanced.WorkflowID,
				"from", advanced.FromStage, "to", advanced.ToStage)
		}

		return nil
	})
	if err != nil {
		return err
	}

	err = bus.Handle(events.WorkflowFailedEvent, func(ctx context.Context, event any) error {
		if failed, ok := event.(*events.WorkflowFailed); ok {
			logger.WarnContext(ctx, "Workflow failed",
				"workflow_id", failed.WorkflowID,
				"stage", failed.Stage, "error", failed.Error)
		}

		return nil
	})
	if err != nil {
		return err
	}

	err = bus.Handle(events.RunFinishedEvent, func(ctx context.Context, event any) error {
		if finished, ok := event.(*events.RunFinished); ok {
			logger.InfoContext(ctx, "Automation run finished",
				"run_id", finished.RunID, "phase", finished.Phase,
				"processed", finished.Counts.Processed,
				"uploaded", finished.Counts.Uploaded,
				"failed", finished.Counts.Failed)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return bus.Subscribe(ctx)
}
