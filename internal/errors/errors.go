// Package errors provides centralized error handling for SAGE.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be
// checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrTaskNotFound indicates that a specific task was not found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskExists indicates an attempt to create a task that already exists.
	ErrTaskExists = errors.New("task already exists")

	// ErrInvalidStatus indicates an unrecognized task status value.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidPriority indicates an unrecognized task priority value.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrInvalidTransition indicates an attempt to make an invalid
	// task status transition.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTitleRequired indicates a task title was empty.
	ErrTitleRequired = errors.New("task title is required")

	// ErrTitleTooLong indicates a task title exceeds the maximum length.
	ErrTitleTooLong = errors.New("task title too long")

	// ErrDescriptionTooLong indicates a task description exceeds the maximum length.
	ErrDescriptionTooLong = errors.New("task description too long")

	// ErrGoalRequired indicates an empty reasoning goal.
	ErrGoalRequired = errors.New("goal is required")

	// ErrGoalTooLong indicates a reasoning goal exceeds the maximum length.
	ErrGoalTooLong = errors.New("goal too long")

	// ErrToolExists indicates an attempt to register a tool name twice.
	ErrToolExists = errors.New("tool already registered")

	// ErrToolNameEmpty indicates a tool with an empty name.
	ErrToolNameEmpty = errors.New("tool name is required")

	// ErrUnknownTool indicates that an unknown tool name was specified.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUnknownAgent indicates a dispatch to an unregistered agent.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrUnknownAction indicates a dispatch of an unsupported action.
	ErrUnknownAction = errors.New("unknown action")

	// ErrAgentExists indicates an attempt to register an agent name twice.
	ErrAgentExists = errors.New("agent already registered")

	// ErrSessionNotFound indicates the requested reasoning session has
	// no persisted steps.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotificationNotFound indicates the requested notification does not exist.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrLockTimeout indicates a file lock could not be acquired within
	// the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrPathTraversal indicates an attempt to use path traversal in a filename.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidReasoning indicates an invalid reasoning configuration value.
	ErrConfigInvalidReasoning = errors.New("invalid reasoning configuration")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
