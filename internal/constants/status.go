package constants

// TaskStatus represents the state of a task in the SAGE lifecycle.
// Status values use snake_case for JSON serialization compatibility.
type TaskStatus string

// Task status constants define the valid states a task can be in.
// These follow the task state machine:
//
//	Pending ↔ InProgress
//	Pending, InProgress → Done, Cancelled
//	Done, Cancelled → Pending, InProgress (reopen)
const (
	// TaskStatusPending indicates a task that has not been started.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusInProgress indicates a task currently being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusDone indicates a task that was completed.
	TaskStatusDone TaskStatus = "done"

	// TaskStatusCancelled indicates a task that was abandoned.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// String returns the string representation of the TaskStatus.
// This implements fmt.Stringer for convenient logging and debugging.
func (s TaskStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a recognized value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status excludes the task from overdue
// queries and urgency ranking.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone || s == TaskStatusCancelled
}

// ValidTaskStatuses returns all valid task status values.
func ValidTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled}
}

// Priority represents the urgency classification of a task.
type Priority string

// Priority constants define the valid task priorities.
const (
	// PriorityLow is routine work without time pressure.
	PriorityLow Priority = "low"

	// PriorityMedium is the default priority.
	PriorityMedium Priority = "medium"

	// PriorityHigh is important work that should be scheduled soon.
	PriorityHigh Priority = "high"

	// PriorityUrgent is work that needs immediate attention.
	PriorityUrgent Priority = "urgent"
)

// String returns the string representation of the Priority.
func (p Priority) String() string {
	return string(p)
}

// IsValid checks if the priority is a recognized value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Weight returns the base urgency weight for the priority.
// Unknown priorities weigh the same as low.
func (p Priority) Weight() int {
	switch p {
	case PriorityUrgent:
		return UrgencyWeightUrgent
	case PriorityHigh:
		return UrgencyWeightHigh
	case PriorityMedium:
		return UrgencyWeightMedium
	case PriorityLow:
		return UrgencyWeightLow
	default:
		return UrgencyWeightLow
	}
}

// ValidPriorities returns all valid priority values.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// Phase identifies one of the five reasoning loop phases.
type Phase string

// Phase constants define the fixed observe→think→plan→act→reflect
// sequence. Phases are never skipped or reordered within an iteration.
const (
	// PhaseObserve builds the context snapshot.
	PhaseObserve Phase = "observe"

	// PhaseThink matches goal keywords against intent categories.
	PhaseThink Phase = "think"

	// PhasePlan schedules tool executions for the iteration.
	PhasePlan Phase = "plan"

	// PhaseAct executes the planned tools in order.
	PhaseAct Phase = "act"

	// PhaseReflect scores the iteration and derives recommendations.
	PhaseReflect Phase = "reflect"
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	return string(p)
}
