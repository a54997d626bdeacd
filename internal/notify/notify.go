// Package notify provides the notification log for SAGE.
//
// Notifications capture events a user should see later (a task became
// overdue, a reasoning session finished, a deadline is near). Each
// notification is stored as an individual YAML file under
// ~/.sage/notifications to enable frictionless appends and trivial
// pruning.
package notify

import (
	"fmt"
	"time"

	sageerrors "github.com/sage-cli/sage/internal/errors"
)

// Level classifies the severity of a notification.
type Level string

const (
	// LevelInfo is routine information.
	LevelInfo Level = "info"

	// LevelWarning needs attention but not immediately.
	LevelWarning Level = "warning"

	// LevelUrgent needs immediate attention.
	LevelUrgent Level = "urgent"
)

// ValidLevels returns all valid level values.
func ValidLevels() []Level {
	return []Level{LevelInfo, LevelWarning, LevelUrgent}
}

// IsValid checks if the level is a valid value.
func (l Level) IsValid() bool {
	switch l {
	case LevelInfo, LevelWarning, LevelUrgent:
		return true
	default:
		return false
	}
}

// Notification is one logged event.
type Notification struct {
	// ID is the unique identifier, format ntf-xxxxxxxx.
	ID string `yaml:"id"`

	// Level classifies the severity.
	Level Level `yaml:"level"`

	// Message is the human-readable notification text.
	Message string `yaml:"message"`

	// TaskID links the notification to a task, when applicable.
	TaskID string `yaml:"task_id,omitempty"`

	// CreatedAt is when the notification was logged.
	CreatedAt time.Time `yaml:"created_at"`

	// Read marks the notification as acknowledged.
	Read bool `yaml:"read"`
}

// Validate checks the notification's field constraints.
func (n *Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification ID %w", sageerrors.ErrEmptyValue)
	}
	if n.Message == "" {
		return fmt.Errorf("notification message %w", sageerrors.ErrEmptyValue)
	}
	if !n.Level.IsValid() {
		return fmt.Errorf("%w: level %q must be one of %v",
			sageerrors.ErrInvalidArgument, n.Level, ValidLevels())
	}
	return nil
}

// Filter narrows the notifications returned by List.
type Filter struct {
	// Level restricts results to a single level when non-nil.
	Level *Level

	// Unread restricts results to unread notifications when true.
	Unread bool

	// Limit caps the number of results. Zero means no limit.
	Limit int
}
