// Package constants provides shared constants for the SAGE task CLI.
package constants

// Directory and file names under the SAGE home directory (~/.sage by
// default, overridable via the SAGE_HOME environment variable).
const (
	// SageHome is the default home directory name.
	SageHome = ".sage"

	// TasksDir holds one JSON file per task.
	TasksDir = "tasks"

	// SessionsDir holds reasoning session step logs.
	SessionsDir = "sessions"

	// NotificationsDir holds one YAML file per notification.
	NotificationsDir = "notifications"

	// LogsDir holds rotating CLI log files.
	LogsDir = "logs"

	// CLILogFileName is the name of the global CLI log file.
	CLILogFileName = "sage.log"

	// StepLogFileName is the JSON-lines file holding a session's steps.
	StepLogFileName = "steps.jsonl"

	// TaskLockFileName is the lock file serializing task store writes.
	TaskLockFileName = "tasks.lock"
)
