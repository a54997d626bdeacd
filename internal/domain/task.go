// Package domain provides shared domain types for the SAGE task CLI.
// These types are used across all internal packages to ensure
// consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/sage-cli/sage/internal/constants"
	sageerrors "github.com/sage-cli/sage/internal/errors"
)

// Task represents a single unit of work tracked by SAGE.
//
// Example JSON representation:
//
//	{
//	    "id": "task-20260824-100000",
//	    "title": "Ship the release notes",
//	    "description": "Draft and publish notes for v1.2",
//	    "status": "pending",
//	    "priority": "high",
//	    "due_date": "2026-08-25T17:00:00Z",
//	    "tags": ["release", "docs"],
//	    "created_at": "2026-08-24T10:00:00Z",
//	    "updated_at": "2026-08-24T10:00:00Z",
//	    "schema_version": 1
//	}
type Task struct {
	// ID is the unique identifier for the task.
	// Format: task-YYYYMMDD-HHMMSS with an optional millisecond suffix.
	ID string `json:"id"`

	// Title is a short human-readable summary (1-200 characters).
	Title string `json:"title"`

	// Description holds optional free-form detail (up to 2000 characters).
	Description string `json:"description,omitempty"`

	// Status is the current state in the task lifecycle.
	Status constants.TaskStatus `json:"status"`

	// Priority classifies the urgency of the task.
	Priority constants.Priority `json:"priority"`

	// DueDate is the optional deadline for the task.
	DueDate *time.Time `json:"due_date,omitempty"`

	// Tags are short labels used for grouping and relating tasks.
	Tags []string `json:"tags,omitempty"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// SchemaVersion indicates the version of the Task struct schema.
	// This enables forward-compatible schema migrations.
	SchemaVersion int `json:"schema_version"`
}

// Validate checks the task's field constraints.
// It does not check status transitions; those are enforced by the store.
func (t *Task) Validate() error {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return sageerrors.ErrTitleRequired
	}
	if len(t.Title) > constants.MaxTitleLength {
		return fmt.Errorf("%w: %d characters exceeds maximum of %d",
			sageerrors.ErrTitleTooLong, len(t.Title), constants.MaxTitleLength)
	}
	if len(t.Description) > constants.MaxDescriptionLength {
		return fmt.Errorf("%w: %d characters exceeds maximum of %d",
			sageerrors.ErrDescriptionTooLong, len(t.Description), constants.MaxDescriptionLength)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q must be one of %v",
			sageerrors.ErrInvalidStatus, t.Status, constants.ValidTaskStatuses())
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q must be one of %v",
			sageerrors.ErrInvalidPriority, t.Priority, constants.ValidPriorities())
	}
	return nil
}

// IsOverdue reports whether the task's due date is strictly before now
// and the task is not in a terminal status.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status.IsTerminal() {
		return false
	}
	return t.DueDate.Before(now)
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// SharedTags returns the tags this task has in common with the other task.
// The result preserves this task's tag order.
func (t *Task) SharedTags(other *Task) []string {
	if other == nil {
		return nil
	}
	var shared []string
	for _, tag := range t.Tags {
		if other.HasTag(tag) {
			shared = append(shared, tag)
		}
	}
	return shared
}

// allowedTransitions maps each status to the statuses it may move to.
// Reopening completed or cancelled tasks is allowed.
var allowedTransitions = map[constants.TaskStatus][]constants.TaskStatus{
	constants.TaskStatusPending: {
		constants.TaskStatusInProgress,
		constants.TaskStatusDone,
		constants.TaskStatusCancelled,
	},
	constants.TaskStatusInProgress: {
		constants.TaskStatusPending,
		constants.TaskStatusDone,
		constants.TaskStatusCancelled,
	},
	constants.TaskStatusDone: {
		constants.TaskStatusPending,
		constants.TaskStatusInProgress,
	},
	constants.TaskStatusCancelled: {
		constants.TaskStatusPending,
		constants.TaskStatusInProgress,
	},
}

// CanTransition reports whether a task may move from one status to another.
// Same-status updates are always allowed (no-op transition).
func CanTransition(from, to constants.TaskStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range allowedTransitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition if the move from one
// status to another is not allowed by the task state machine.
func ValidateTransition(from, to constants.TaskStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", sageerrors.ErrInvalidTransition, from, to)
	}
	return nil
}
