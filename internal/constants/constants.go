// Package constants provides shared constants for the SAGE task CLI.
// These values are used across all internal packages to keep limits,
// defaults, and identifiers consistent.
package constants

import "time"

// Task field limits.
const (
	// MaxTitleLength is the maximum length of a task title.
	MaxTitleLength = 200

	// MaxDescriptionLength is the maximum length of a task description.
	MaxDescriptionLength = 2000

	// MaxGoalLength is the maximum length of a reasoning goal.
	MaxGoalLength = 1000

	// MaxTagLength is the maximum length of a single task tag.
	MaxTagLength = 50
)

// Reasoning engine defaults and bounds.
const (
	// DefaultMaxIterations is the default iteration budget for a
	// reasoning session.
	DefaultMaxIterations = 10

	// MaxIterationsCeiling is the hard upper bound on the iteration
	// budget regardless of caller options.
	MaxIterationsCeiling = 100

	// DefaultReasoningTimeout is the default wall-clock budget for a
	// reasoning session.
	DefaultReasoningTimeout = 30 * time.Second

	// DefaultQueryLimit is the default number of tasks loaded by tools
	// that query the store without an explicit limit.
	DefaultQueryLimit = 100
)

// Urgency scoring weights. The score for a task is its priority weight
// plus the overdue bonus or the due-soon bonus (the two bonuses are
// mutually exclusive: a task cannot be both overdue and due soon).
const (
	// UrgencyWeightUrgent is the base weight for urgent priority.
	UrgencyWeightUrgent = 4

	// UrgencyWeightHigh is the base weight for high priority.
	UrgencyWeightHigh = 3

	// UrgencyWeightMedium is the base weight for medium priority.
	UrgencyWeightMedium = 2

	// UrgencyWeightLow is the base weight for low priority.
	UrgencyWeightLow = 1

	// UrgencyOverdueBonus is added when the due date is strictly in the past.
	UrgencyOverdueBonus = 2

	// UrgencyDueSoonBonus is added when the due date is within DueSoonWindow.
	UrgencyDueSoonBonus = 1

	// DueSoonWindow is how far ahead a due date counts as "due soon".
	DueSoonWindow = 24 * time.Hour
)

// Reflection confidence tuning. Confidence starts at the base value and
// is reduced per overdue task, capped and floored.
const (
	// BaseConfidence is the starting confidence for a reflect phase.
	BaseConfidence = 0.7

	// OverduePenaltyPerTask is the confidence penalty per overdue task.
	OverduePenaltyPerTask = 0.02

	// MaxOverduePenalty caps the total overdue confidence penalty.
	MaxOverduePenalty = 0.1

	// MinConfidence floors confidence after overdue penalties.
	MinConfidence = 0.5

	// PendingBacklogThreshold is the pending-task count above which the
	// reflect phase recommends breaking work down.
	PendingBacklogThreshold = 5
)

// TaskSchemaVersion is the current version of the persisted Task schema.
// This enables forward-compatible schema migrations.
const TaskSchemaVersion = 1

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size of the log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of rotated log files.
	LogMaxAgeDays = 30

	// LogCompress controls whether rotated log files are compressed.
	LogCompress = true
)
