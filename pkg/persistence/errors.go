// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrScheduleNotFound indicates no schedule state exists for the operator.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrTemplateNotFound indicates no pinned template snapshot exists.
	ErrTemplateNotFound = errors.New("template snapshot not found")

	// ErrRowNotFound indicates a monitoring row was not found.
	ErrRowNotFound = errors.New("row not found")

	// ErrUnknownRowField indicates an Upsert field outside the documented set.
	ErrUnknownRowField = errors.New("unknown row field")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsScheduleNotFound checks if an error indicates schedule state was not found.
func IsScheduleNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound)
}

// IsTemplateNotFound checks if an error indicates no pinned snapshot exists.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsRowNotFound checks if an error indicates a monitoring row was not found.
func IsRowNotFound(err error) bool {
	return errors.Is(err, ErrRowNotFound)
}
