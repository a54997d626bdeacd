package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	sageerrors "github.com/sage-cli/sage/internal/errors"
	"github.com/sage-cli/sage/internal/notify"
	"github.com/sage-cli/sage/internal/tui"
)

// newNotificationsCmd creates the notifications command group.
func newNotificationsCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notify"},
		Short:   "Manage notifications",
		Long: `List and acknowledge notifications logged by task and reasoning
commands. Notifications are stored under ~/.sage/notifications.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newNotificationsListCmd(flags))
	cmd.AddCommand(newNotificationsReadCmd(flags))
	cmd.AddCommand(newNotificationsPruneCmd(flags))

	return cmd
}

// notificationsListFlags holds the flags for the notifications list command.
type notificationsListFlags struct {
	level  string
	unread bool
	limit  int
}

// newNotificationsListCmd creates the notifications list command.
func newNotificationsListCmd(flags *GlobalFlags) *cobra.Command {
	listFlags := &notificationsListFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Long: `List notifications, newest first.

Examples:
  sage notifications list
  sage notifications list --unread
  sage notifications list --level urgent --limit 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNotificationsList(cmd.Context(), cmd.OutOrStdout(), flags, listFlags)
		},
	}

	cmd.Flags().StringVar(&listFlags.level, "level", "", "Filter by level (info, warning, urgent)")
	cmd.Flags().BoolVarP(&listFlags.unread, "unread", "u", false, "Show only unread notifications")
	cmd.Flags().IntVarP(&listFlags.limit, "limit", "n", 0, "Maximum notifications to show (0 = unlimited)")

	return cmd
}

// runNotificationsList executes the notifications list command.
func runNotificationsList(ctx context.Context, w io.Writer, flags *GlobalFlags, listFlags *notificationsListFlags) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "notifications list", err)
	}

	filter := notify.Filter{
		Unread: listFlags.unread,
		Limit:  listFlags.limit,
	}
	if listFlags.level != "" {
		level := notify.Level(listFlags.level)
		if !level.IsValid() {
			return outputError(w, format, "notifications list", fmt.Errorf("%w: level %q must be one of %v",
				sageerrors.ErrInvalidArgument, listFlags.level, notify.ValidLevels()))
		}
		filter.Level = &level
	}

	notifications, err := deps.notifier.List(ctx, filter)
	if err != nil {
		return outputError(w, format, "notifications list", err)
	}

	if format == OutputJSON {
		return out.JSON(notifications)
	}

	displayNotifications(out, notifications)
	return nil
}

// displayNotifications renders notifications in table format.
func displayNotifications(out tui.Output, notifications []*notify.Notification) {
	if len(notifications) == 0 {
		out.Info("No notifications.")
		return
	}

	for _, n := range notifications {
		marker := "•"
		if n.Read {
			marker = " "
		}
		line := fmt.Sprintf("%s %-12s  %-8s  %-8s  %s", marker, n.ID, n.Level, formatAge(n.CreatedAt), n.Message)
		switch n.Level {
		case notify.LevelUrgent:
			out.Warning(line)
		default:
			out.Info(line)
		}
	}
}

// newNotificationsReadCmd creates the notifications read command.
func newNotificationsReadCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotificationsRead(cmd.Context(), cmd.OutOrStdout(), flags, args[0])
		},
	}
	return cmd
}

// runNotificationsRead executes the notifications read command.
func runNotificationsRead(ctx context.Context, w io.Writer, flags *GlobalFlags, id string) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "notifications read", err)
	}

	if err := deps.notifier.MarkRead(ctx, id); err != nil {
		return outputError(w, format, "notifications read", err)
	}

	if format == OutputJSON {
		return out.JSON(map[string]any{"success": true, "read": id})
	}

	out.Success(fmt.Sprintf("Marked notification as read: %s", id))
	return nil
}

// newNotificationsPruneCmd creates the notifications prune command.
func newNotificationsPruneCmd(flags *GlobalFlags) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove read notifications older than the retention window",
		Long: `Remove read notifications older than the retention window.

The window defaults to notifications.prune_after from the config file
(30 days unless overridden). Unread notifications are always kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNotificationsPrune(cmd.Context(), cmd.OutOrStdout(), flags, olderThan)
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Retention window override (e.g. 168h)")

	return cmd
}

// runNotificationsPrune executes the notifications prune command.
func runNotificationsPrune(ctx context.Context, w io.Writer, flags *GlobalFlags, olderThan time.Duration) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "notifications prune", err)
	}

	if olderThan <= 0 {
		olderThan = deps.cfg.Notifications.PruneAfter
	}

	removed, err := deps.notifier.Prune(ctx, olderThan)
	if err != nil {
		return outputError(w, format, "notifications prune", err)
	}

	if format == OutputJSON {
		return out.JSON(map[string]any{"success": true, "removed": removed})
	}

	out.Success(fmt.Sprintf("Removed %d notification(s)", removed))
	return nil
}
