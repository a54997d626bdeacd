// Style system for SAGE terminal output, built on Lip Gloss.
//
// All colors use AdaptiveColor for light/dark terminal support. Call
// CheckNoColor() at the start of commands that render styled text to
// respect the NO_COLOR environment variable.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/sage-cli/sage/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for styling API
var (
	// ColorPrimary is blue, used for active states and primary text.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for success states and completed items.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for warning states and overdue items.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for error states and failed items.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for dim states and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim/faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles using AdaptiveColor for
// light/dark terminal support.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
// Call this at the start of commands that output styled text.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string)
// or TERM=dumb. This follows the NO_COLOR standard: https://no-color.org/
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// TaskStatusColors returns the semantic color definitions for task statuses.
func TaskStatusColors() map[constants.TaskStatus]lipgloss.AdaptiveColor {
	return map[constants.TaskStatus]lipgloss.AdaptiveColor{
		constants.TaskStatusPending:    {Light: "#0087AF", Dark: "#00D7FF"}, // Blue
		constants.TaskStatusInProgress: {Light: "#D7AF00", Dark: "#FFD700"}, // Yellow
		constants.TaskStatusDone:       {Light: "#00875F", Dark: "#00FF87"}, // Green
		constants.TaskStatusCancelled:  {Light: "#585858", Dark: "#6C6C6C"}, // Dim
	}
}

// TaskStatusIcon returns the icon/symbol for a given task status.
// Status displays keep triple redundancy: icon + color + text.
func TaskStatusIcon(status constants.TaskStatus) string {
	icons := map[constants.TaskStatus]string{
		constants.TaskStatusPending:    "○",
		constants.TaskStatusInProgress: "●",
		constants.TaskStatusDone:       "✓",
		constants.TaskStatusCancelled:  "✗",
	}
	if icon, ok := icons[status]; ok {
		return icon
	}
	return "?"
}

// PriorityColors returns the semantic color definitions for task priorities.
func PriorityColors() map[constants.Priority]lipgloss.AdaptiveColor {
	return map[constants.Priority]lipgloss.AdaptiveColor{
		constants.PriorityLow:    {Light: "#585858", Dark: "#6C6C6C"},
		constants.PriorityMedium: {Light: "#0087AF", Dark: "#00D7FF"},
		constants.PriorityHigh:   {Light: "#D7AF00", Dark: "#FFD700"},
		constants.PriorityUrgent: {Light: "#AF0000", Dark: "#FF5F5F"},
	}
}

// FormatStatus formats a task status with its icon for display.
func FormatStatus(status constants.TaskStatus) string {
	return TaskStatusIcon(status) + " " + status.String()
}

// ActionMark returns the transcript marker for a tool execution result.
func ActionMark(success bool) string {
	if success {
		return "✓"
	}
	return "✗"
}
