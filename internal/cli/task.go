package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-cli/sage/internal/agent"
	"github.com/sage-cli/sage/internal/constants"
	"github.com/sage-cli/sage/internal/domain"
	sageerrors "github.com/sage-cli/sage/internal/errors"
	"github.com/sage-cli/sage/internal/notify"
	"github.com/sage-cli/sage/internal/task"
	"github.com/sage-cli/sage/internal/tui"
)

// newTaskCmd creates the task command group.
func newTaskCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long: `Create, list, update, and delete tasks.

Tasks are stored as individual JSON files under ~/.sage/tasks and move
through the lifecycle pending → in_progress → done/cancelled.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newTaskAddCmd(flags))
	cmd.AddCommand(newTaskListCmd(flags))
	cmd.AddCommand(newTaskUpdateCmd(flags))
	cmd.AddCommand(newTaskDoneCmd(flags))
	cmd.AddCommand(newTaskDeleteCmd(flags))

	return cmd
}

// taskAddFlags holds the flags for the task add command.
type taskAddFlags struct {
	description string
	priority    string
	due         string
	tags        string
}

// newTaskAddCmd creates the task add command.
func newTaskAddCmd(flags *GlobalFlags) *cobra.Command {
	addFlags := &taskAddFlags{}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Long: `Add a new task to the store.

Examples:
  sage task add "Ship the release notes"
  sage task add "Fix login bug" --priority urgent --due 2026-08-25
  sage task add "Refactor parser" --tags "cleanup,parser" -d "Split the lexer out"

Exit codes:
  0: Success
  1: General error
  2: Invalid input`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskAdd(cmd.Context(), cmd.OutOrStdout(), flags, addFlags, args[0])
		},
	}

	cmd.Flags().StringVarP(&addFlags.description, "description", "d", "", "Detailed description")
	cmd.Flags().StringVarP(&addFlags.priority, "priority", "p", string(constants.PriorityMedium), "Priority (low, medium, high, urgent)")
	cmd.Flags().StringVar(&addFlags.due, "due", "", "Due date (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVarP(&addFlags.tags, "tags", "t", "", "Comma-separated labels")

	return cmd
}

// runTaskAdd executes the task add command.
func runTaskAdd(ctx context.Context, w io.Writer, flags *GlobalFlags, addFlags *taskAddFlags, title string) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "task add", err)
	}

	priority := constants.Priority(addFlags.priority)
	if !priority.IsValid() {
		return outputError(w, format, "task add", fmt.Errorf("%w: priority %q must be one of %v",
			sageerrors.ErrInvalidPriority, addFlags.priority, constants.ValidPriorities()))
	}

	due, err := parseDueDate(addFlags.due)
	if err != nil {
		return outputError(w, format, "task add", err)
	}

	now := time.Now().UTC()
	t := &domain.Task{
		ID:          task.GenerateTaskIDUnique(existingTaskIDs(ctx, deps)),
		Title:       title,
		Description: addFlags.description,
		Status:      constants.TaskStatusPending,
		Priority:    priority,
		DueDate:     due,
		Tags:        parseTags(addFlags.tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	resp, err := deps.agents.Dispatch(ctx, domain.AgentTasks, agent.ActionCreateTask, agent.Request{Task: t})
	if err != nil {
		return outputError(w, format, "task add", err)
	}

	notifyTaskCreated(ctx, deps, resp.Task, now)

	if format == OutputJSON {
		return out.JSON(resp.Task)
	}

	out.Success(fmt.Sprintf("Created task: %s", resp.Task.ID))
	out.Info(fmt.Sprintf("  Title: %s", resp.Task.Title))
	out.Info(fmt.Sprintf("  Priority: %s | Status: %s", resp.Task.Priority, resp.Task.Status))
	if resp.Task.DueDate != nil {
		out.Info(fmt.Sprintf("  Due: %s", formatDue(resp.Task.DueDate)))
	}
	return nil
}

// existingTaskIDs collects current task IDs for collision-free ID
// generation. Listing failures fall back to an empty set; the store
// still rejects duplicate IDs on create.
func existingTaskIDs(ctx context.Context, deps *appDeps) map[string]bool {
	tasks, err := deps.store.List(ctx, task.Filter{})
	if err != nil {
		return nil
	}
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}
	return ids
}

// notifyTaskCreated logs a notification when a task is created already
// overdue or due within a day. Notification failures never fail the
// command.
func notifyTaskCreated(ctx context.Context, deps *appDeps, t *domain.Task, now time.Time) {
	if !deps.cfg.Notifications.Enabled || t.DueDate == nil {
		return
	}
	switch {
	case t.DueDate.Before(now):
		_, _ = deps.notifier.Add(ctx, notify.LevelUrgent,
			fmt.Sprintf("Task %q was created already overdue", t.Title), t.ID)
	case t.DueDate.Before(now.Add(constants.DueSoonWindow)):
		_, _ = deps.notifier.Add(ctx, notify.LevelWarning,
			fmt.Sprintf("Task %q is due within 24 hours", t.Title), t.ID)
	}
}

// taskListFlags holds the flags for the task list command.
type taskListFlags struct {
	status   string
	priority string
	limit    int
	overdue  bool
}

// newTaskListCmd creates the task list command.
func newTaskListCmd(flags *GlobalFlags) *cobra.Command {
	listFlags := &taskListFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks in creation order.

Examples:
  sage task list
  sage task list --status pending
  sage task list --priority urgent --limit 5
  sage task list --overdue
  sage task list -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTaskList(cmd.Context(), cmd.OutOrStdout(), flags, listFlags)
		},
	}

	cmd.Flags().StringVar(&listFlags.status, "status", "", "Filter by status (pending, in_progress, done, cancelled)")
	cmd.Flags().StringVarP(&listFlags.priority, "priority", "p", "", "Filter by priority (low, medium, high, urgent)")
	cmd.Flags().IntVarP(&listFlags.limit, "limit", "n", 0, "Maximum tasks to show (0 = unlimited)")
	cmd.Flags().BoolVar(&listFlags.overdue, "overdue", false, "Show only overdue tasks")

	return cmd
}

// runTaskList executes the task list command.
func runTaskList(ctx context.Context, w io.Writer, flags *GlobalFlags, listFlags *taskListFlags) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "task list", err)
	}

	req := agent.Request{Limit: listFlags.limit}
	action := agent.ActionListTasks

	if listFlags.overdue {
		action = agent.ActionGetOverdue
	} else {
		if listFlags.status != "" {
			status := constants.TaskStatus(listFlags.status)
			if !status.IsValid() {
				return outputError(w, format, "task list", fmt.Errorf("%w: status %q must be one of %v",
					sageerrors.ErrInvalidStatus, listFlags.status, constants.ValidTaskStatuses()))
			}
			req.Status = &status
		}
		if listFlags.priority != "" {
			priority := constants.Priority(listFlags.priority)
			if !priority.IsValid() {
				return outputError(w, format, "task list", fmt.Errorf("%w: priority %q must be one of %v",
					sageerrors.ErrInvalidPriority, listFlags.priority, constants.ValidPriorities()))
			}
			req.Priority = &priority
		}
	}

	resp, err := deps.agents.Dispatch(ctx, domain.AgentTasks, action, req)
	if err != nil {
		return outputError(w, format, "task list", err)
	}

	if format == OutputJSON {
		return out.JSON(resp.Tasks)
	}

	displayTaskTable(out, resp.Tasks)
	return nil
}

// taskUpdateFlags holds the flags for the task update command.
type taskUpdateFlags struct {
	title       string
	description string
	status      string
	priority    string
	due         string
	tags        string
}

// newTaskUpdateCmd creates the task update command.
func newTaskUpdateCmd(flags *GlobalFlags) *cobra.Command {
	updateFlags := &taskUpdateFlags{}

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task",
		Long: `Update fields of an existing task.

Only the provided flags are changed. Status changes are validated
against the task lifecycle; invalid transitions are rejected.

Examples:
  sage task update task-20260824-100000 --status in_progress
  sage task update task-20260824-100000 --priority urgent --due 2026-08-25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskUpdate(cmd.Context(), cmd.OutOrStdout(), flags, updateFlags, args[0])
		},
	}

	cmd.Flags().StringVar(&updateFlags.title, "title", "", "New title")
	cmd.Flags().StringVarP(&updateFlags.description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&updateFlags.status, "status", "", "New status (pending, in_progress, done, cancelled)")
	cmd.Flags().StringVarP(&updateFlags.priority, "priority", "p", "", "New priority (low, medium, high, urgent)")
	cmd.Flags().StringVar(&updateFlags.due, "due", "", "New due date (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVarP(&updateFlags.tags, "tags", "t", "", "New comma-separated labels")

	return cmd
}

// runTaskUpdate executes the task update command.
func runTaskUpdate(ctx context.Context, w io.Writer, flags *GlobalFlags, updateFlags *taskUpdateFlags, taskID string) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "task update", err)
	}

	resp, err := deps.agents.Dispatch(ctx, domain.AgentTasks, agent.ActionGetTask, agent.Request{TaskID: taskID})
	if err != nil {
		return outputError(w, format, "task update", err)
	}
	t := resp.Task

	if updateFlags.title != "" {
		t.Title = updateFlags.title
	}
	if updateFlags.description != "" {
		t.Description = updateFlags.description
	}
	if updateFlags.status != "" {
		status := constants.TaskStatus(updateFlags.status)
		if !status.IsValid() {
			return outputError(w, format, "task update", fmt.Errorf("%w: status %q must be one of %v",
				sageerrors.ErrInvalidStatus, updateFlags.status, constants.ValidTaskStatuses()))
		}
		t.Status = status
	}
	if updateFlags.priority != "" {
		priority := constants.Priority(updateFlags.priority)
		if !priority.IsValid() {
			return outputError(w, format, "task update", fmt.Errorf("%w: priority %q must be one of %v",
				sageerrors.ErrInvalidPriority, updateFlags.priority, constants.ValidPriorities()))
		}
		t.Priority = priority
	}
	if updateFlags.due != "" {
		due, err := parseDueDate(updateFlags.due)
		if err != nil {
			return outputError(w, format, "task update", err)
		}
		t.DueDate = due
	}
	if updateFlags.tags != "" {
		t.Tags = parseTags(updateFlags.tags)
	}

	updated, err := deps.agents.Dispatch(ctx, domain.AgentTasks, agent.ActionUpdateTask, agent.Request{Task: t})
	if err != nil {
		return outputError(w, format, "task update", err)
	}

	if format == OutputJSON {
		return out.JSON(updated.Task)
	}

	out.Success(fmt.Sprintf("Updated task: %s", updated.Task.ID))
	out.Info(fmt.Sprintf("  Title: %s", updated.Task.Title))
	out.Info(fmt.Sprintf("  Priority: %s | Status: %s", updated.Task.Priority, updated.Task.Status))
	return nil
}

// newTaskDoneCmd creates the task done command.
func newTaskDoneCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskDone(cmd.Context(), cmd.OutOrStdout(), flags, args[0])
		},
	}
	return cmd
}

// runTaskDone executes the task done command.
func runTaskDone(ctx context.Context, w io.Writer, flags *GlobalFlags, taskID string) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "task done", err)
	}

	resp, err := deps.agents.Dispatch(ctx, domain.AgentTasks, agent.ActionGetTask, agent.Request{TaskID: taskID})
	if err != nil {
		return outputError(w, format, "task done", err)
	}
	t := resp.Task
	t.Status = constants.TaskStatusDone

	updated, err := deps.agents.Dispatch(ctx, domain.AgentTasks, agent.ActionUpdateTask, agent.Request{Task: t})
	if err != nil {
		return outputError(w, format, "task done", err)
	}

	if deps.cfg.Notifications.Enabled {
		_, _ = deps.notifier.Add(ctx, notify.LevelInfo,
			fmt.Sprintf("Task %q completed", updated.Task.Title), updated.Task.ID)
	}

	if format == OutputJSON {
		return out.JSON(updated.Task)
	}

	out.Success(fmt.Sprintf("Completed task: %s (%s)", updated.Task.ID, updated.Task.Title))
	return nil
}

// newTaskDeleteCmd creates the task delete command.
func newTaskDeleteCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskDelete(cmd.Context(), cmd.OutOrStdout(), flags, args[0])
		},
	}
	return cmd
}

// runTaskDelete executes the task delete command.
func runTaskDelete(ctx context.Context, w io.Writer, flags *GlobalFlags, taskID string) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "task delete", err)
	}

	if _, err := deps.agents.Dispatch(ctx, domain.AgentTasks, agent.ActionDeleteTask, agent.Request{TaskID: taskID}); err != nil {
		return outputError(w, format, "task delete", err)
	}

	if format == OutputJSON {
		return out.JSON(map[string]any{"success": true, "deleted": taskID})
	}

	out.Success(fmt.Sprintf("Deleted task: %s", taskID))
	return nil
}
