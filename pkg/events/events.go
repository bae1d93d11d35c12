// Package events defines event types for workflow and automation lifecycle notifications.
package events

import (
	"time"

	"github.com/clipline/clipline/pkg/models"
)

type EventType string

// Topic carries all clipline lifecycle events.
const Topic = "clipline.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Workflow lifecycle events.
	WorkflowCreatedEvent       EventType = "workflow.created"
	WorkflowStageAdvancedEvent EventType = "workflow.stage.advanced"
	WorkflowFailedEvent        EventType = "workflow.failed"

	// Automation run lifecycle events.
	RunStartedEvent    EventType = "automation.run.started"
	RunFinishedEvent   EventType = "automation.run.finished"
	ItemProcessedEvent EventType = "automation.item.processed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type WorkflowCreated struct {
	BaseEvent

	WorkflowID string       `json:"workflow_id"`
	Stage      models.Stage `json:"stage"`
	Title      string       `json:"title"`
}

func (e WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

type WorkflowStageAdvanced struct {
	BaseEvent

	WorkflowID string       `json:"workflow_id"`
	FromStage  models.Stage `json:"from_stage"`
	ToStage    models.Stage `json:"to_stage"`
}

func (e WorkflowStageAdvanced) GetType() EventType {
	return WorkflowStageAdvancedEvent
}

type WorkflowFailed struct {
	BaseEvent

	WorkflowID string       `json:"workflow_id"`
	Stage      models.Stage `json:"stage"`
	Error      string       `json:"error"`
}

func (e WorkflowFailed) GetType() EventType {
	return WorkflowFailedEvent
}

type RunStarted struct {
	BaseEvent

	RunID      string `json:"run_id"`
	OperatorID string `json:"operator_id,omitempty"`
}

func (e RunStarted) GetType() EventType {
	return RunStartedEvent
}

type RunFinished struct {
	BaseEvent

	RunID  string           `json:"run_id"`
	Phase  models.RunPhase  `json:"phase"`
	Counts models.RunCounts `json:"counts"`
	Error  string           `json:"error,omitempty"`
}

func (e RunFinished) GetType() EventType {
	return RunFinishedEvent
}

type ItemProcessed struct {
	BaseEvent

	RunID      string `json:"run_id"`
	ItemID     string `json:"item_id"`
	WorkflowID string `json:"workflow_id,omitempty"`
	Uploaded   bool   `json:"uploaded"`
	Error      string `json:"error,omitempty"`
}

func (e ItemProcessed) GetType() EventType {
	return ItemProcessedEvent
}
