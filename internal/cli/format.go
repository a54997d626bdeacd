package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sage-cli/sage/internal/domain"
	sageerrors "github.com/sage-cli/sage/internal/errors"
	"github.com/sage-cli/sage/internal/tui"
)

// outputError outputs an error in the appropriate format. In JSON mode
// the error is encoded to the writer and ErrJSONErrorOutput is returned
// so the exit code still reflects the failure.
func outputError(w io.Writer, format, command string, err error) error {
	if format == OutputJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if encErr := encoder.Encode(map[string]any{
			"success": false,
			"command": command,
			"error":   err.Error(),
		}); encErr != nil {
			return fmt.Errorf("failed to encode JSON: %w", encErr)
		}
		return sageerrors.ErrJSONErrorOutput
	}
	return err
}

// outputFormat retrieves the output format from the global flags.
func outputFormat(flags *GlobalFlags) string {
	if flags == nil || flags.Output == "" {
		return OutputText
	}
	return flags.Output
}

// parseTags splits a comma-separated tag list, trimming whitespace and
// dropping empty entries.
func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseDueDate parses a due date in RFC3339 or YYYY-MM-DD form.
func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: due date %q must be RFC3339 or YYYY-MM-DD", sageerrors.ErrInvalidArgument, raw)
	}
	return &t, nil
}

// formatDue renders a due date for table output.
func formatDue(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

// formatAge formats a time as a human-readable age string.
func formatAge(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}

	days := int(d.Hours() / 24)
	if days < 7 {
		return fmt.Sprintf("%dd", days)
	}
	weeks := days / 7
	if weeks < 4 {
		return fmt.Sprintf("%dw", weeks)
	}
	return fmt.Sprintf("%dmo", days/30)
}

// displayTaskTable renders tasks in table format.
func displayTaskTable(out tui.Output, tasks []*domain.Task) {
	if len(tasks) == 0 {
		out.Info("No tasks found.")
		return
	}

	out.Info(fmt.Sprintf("%-22s  %-40s  %-13s  %-8s  %-16s  %s",
		"ID", "TITLE", "STATUS", "PRIORITY", "DUE", "AGE"))

	for _, t := range tasks {
		title := t.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		out.Info(fmt.Sprintf("%-22s  %-40s  %-13s  %-8s  %-16s  %s",
			t.ID, title, tui.FormatStatus(t.Status), t.Priority, formatDue(t.DueDate), formatAge(t.CreatedAt)))
	}
}
