package models

import "time"

// RunPhase is the lifecycle phase of the single automation run.
type RunPhase string

const (
	RunPhaseIdle      RunPhase = "idle"
	RunPhaseRunning   RunPhase = "running"
	RunPhaseStopping  RunPhase = "stopping"
	RunPhaseCompleted RunPhase = "completed"
	RunPhaseFailed    RunPhase = "failed"
)

// Active reports whether a run currently owns the automation loop.
func (p RunPhase) Active() bool {
	return p == RunPhaseRunning || p == RunPhaseStopping
}

// RunCounts tracks per-run item accounting.
type RunCounts struct {
	Discovered int `json:"discovered"`
	Processed  int `json:"processed"`
	Uploaded   int `json:"uploaded"`
	Failed     int `json:"failed"`
	Remaining  int `json:"remaining"`
}

// RunLogEntry is one line of the bounded operational log.
type RunLogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"` // info | error
	Message string    `json:"message"`
}

// DefaultRunLogCapacity bounds the run log; oldest entries are evicted first.
const DefaultRunLogCapacity = 200

// RunLog is a bounded FIFO log retaining the most recent entries.
type RunLog struct {
	entries  []RunLogEntry
	capacity int
}

// NewRunLog creates a bounded log. Non-positive capacities fall back to the
// default.
func NewRunLog(capacity int) *RunLog {
	if capacity <= 0 {
		capacity = DefaultRunLogCapacity
	}

	return &RunLog{capacity: capacity}
}

// Append records an entry, evicting the oldest when the log is full.
func (l *RunLog) Append(level, message string) {
	if len(l.entries) == l.capacity {
		l.entries = l.entries[1:]
	}

	l.entries = append(l.entries, RunLogEntry{
		Time:    time.Now().UTC(),
		Level:   level,
		Message: message,
	})
}

// Len returns the number of retained entries.
func (l *RunLog) Len() int {
	return len(l.entries)
}

// Snapshot returns a copy of the retained entries, oldest first.
func (l *RunLog) Snapshot() []RunLogEntry {
	out := make([]RunLogEntry, len(l.entries))
	copy(out, l.entries)

	return out
}

// RunState is a point-in-time snapshot of the automation run, safe for
// concurrent reads while the runner loop mutates its live state.
type RunState struct {
	ID            string        `json:"id,omitempty"`
	Phase         RunPhase      `json:"phase"`
	StopRequested bool          `json:"stop_requested"`
	Counts        RunCounts     `json:"counts"`
	CurrentItemID string        `json:"current_item_id,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	FinishedAt    *time.Time    `json:"finished_at,omitempty"`
	Logs          []RunLogEntry `json:"logs"`
}
