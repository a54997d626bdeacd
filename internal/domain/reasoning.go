package domain

import (
	"time"

	"github.com/sage-cli/sage/internal/constants"
)

// ReasoningStep is one timestamped phase record within a reasoning
// session. Steps are appended by the engine, persisted for audit, and
// never mutated or deleted.
//
// Example JSON representation:
//
//	{
//	    "id": "stp-a1b2c3d4",
//	    "session_id": "ses-0f9e8d7c",
//	    "step_number": 3,
//	    "phase": "plan",
//	    "input": "intents: prioritization",
//	    "output": "2 actions planned",
//	    "duration_ms": 0,
//	    "created_at": "2026-08-24T10:00:01Z"
//	}
type ReasoningStep struct {
	// ID is the unique identifier for the step.
	ID string `json:"id"`

	// SessionID links the step to its reasoning session.
	SessionID string `json:"session_id"`

	// StepNumber is 1-based and monotonically increasing within a session.
	StepNumber int `json:"step_number"`

	// Phase is the reasoning phase that produced this step.
	Phase constants.Phase `json:"phase"`

	// Input is a string snapshot of the phase input.
	Input string `json:"input"`

	// Output is a string snapshot of the phase output.
	Output string `json:"output"`

	// DurationMs is the phase duration in milliseconds (>= 0).
	// Coarse clocks may report zero; callers must not rely on phase
	// durations for precision.
	DurationMs int64 `json:"duration_ms"`

	// CreatedAt is when the step was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// PlannedAction is a tool execution scheduled by the plan phase and
// consumed by the act phase within the same iteration. It is transient
// and never persisted.
type PlannedAction struct {
	// Tool is the registry name of the tool to execute.
	Tool string `json:"tool"`

	// Params are the typed parameters passed to the tool.
	Params ToolParams `json:"params"`

	// Reason is a human-readable justification for scheduling the tool.
	Reason string `json:"reason"`
}

// ToolParams is the typed parameter set accepted by registry tools.
// Each tool reads only the fields it documents; nil/zero fields mean
// "not provided".
type ToolParams struct {
	// Status filters tasks by status (query_tasks).
	Status *constants.TaskStatus `json:"status,omitempty"`

	// Priority filters tasks by priority (query_tasks).
	Priority *constants.Priority `json:"priority,omitempty"`

	// Limit caps the number of tasks loaded. Zero means the default.
	Limit int `json:"limit,omitempty"`

	// TaskID identifies the subject task (find_dependencies).
	TaskID string `json:"task_id,omitempty"`

	// Tasks supplies an explicit task list to analysis tools, bypassing
	// the store (analyze_priorities, suggest_order, calculate_urgency).
	Tasks []*Task `json:"-"`
}

// ToolResult is the value returned by every tool execution. Failures
// are values, never panics or errors crossing the registry boundary.
type ToolResult struct {
	// Success reports whether the tool completed without error.
	Success bool `json:"success"`

	// Summary is a one-line natural-language description of the outcome.
	Summary string `json:"summary,omitempty"`

	// Data holds the tool-specific payload (ranked tasks, counts, etc.).
	Data any `json:"data,omitempty"`

	// Error holds the failure message when Success is false.
	Error string `json:"error,omitempty"`
}

// RankedTask pairs a task with its computed urgency score.
type RankedTask struct {
	// Task is the scored task.
	Task *Task `json:"task"`

	// Score is the urgency score (priority weight plus due-date bonuses).
	Score int `json:"score"`
}

// OrderedTask is one slot in a suggested execution order.
type OrderedTask struct {
	// Position is the 1-based slot in the suggested order.
	Position int `json:"position"`

	// Task is the task suggested for this slot.
	Task *Task `json:"task"`

	// Reason cites the urgency score behind the placement.
	Reason string `json:"reason"`
}

// RelatedTask pairs a task with the tags it shares with the queried task.
type RelatedTask struct {
	// Task is the related task.
	Task *Task `json:"task"`

	// SharedTags is the non-empty set of tags in common.
	SharedTags []string `json:"shared_tags"`
}

// ContextStats summarizes the task store at snapshot time.
type ContextStats struct {
	// Total is the number of tasks loaded into the snapshot.
	Total int `json:"total"`

	// ByStatus counts tasks per status.
	ByStatus map[constants.TaskStatus]int `json:"by_status"`

	// ByPriority counts tasks per priority.
	ByPriority map[constants.Priority]int `json:"by_priority"`

	// OverdueCount is the number of overdue, non-terminal tasks.
	OverdueCount int `json:"overdue_count"`
}

// ReasoningResult is the terminal output of one reasoning session.
// Exactly one result is produced per Reason call.
type ReasoningResult struct {
	// Goal is the natural-language goal the session acted on.
	Goal string `json:"goal"`

	// Result is a human-readable summary of the session outcome.
	Result string `json:"result"`

	// Confidence is a [0,1] float derived from the final reflect phase.
	Confidence float64 `json:"confidence"`

	// Steps holds the full in-session history when the caller requested
	// it, otherwise empty. Steps are always persisted regardless.
	Steps []ReasoningStep `json:"steps,omitempty"`

	// Recommendations are ordered, human-readable suggestions.
	Recommendations []string `json:"recommendations"`

	// SessionID identifies the session that produced this result.
	SessionID string `json:"session_id"`

	// TotalDurationMs is the wall-clock duration of the whole session
	// as measured by the engine (>= the sum of step durations).
	TotalDurationMs int64 `json:"total_duration_ms"`
}
