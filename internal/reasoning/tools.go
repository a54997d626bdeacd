package reasoning

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sage-cli/sage/internal/clock"
	"github.com/sage-cli/sage/internal/constants"
	"github.com/sage-cli/sage/internal/domain"
	sageerrors "github.com/sage-cli/sage/internal/errors"
	"github.com/sage-cli/sage/internal/task"
)

// Built-in tool names.
const (
	// ToolQueryTasks returns tasks matching status/priority filters.
	ToolQueryTasks = "query_tasks"

	// ToolAnalyzePriorities ranks tasks by urgency score.
	ToolAnalyzePriorities = "analyze_priorities"

	// ToolFindOverdue returns overdue tasks with a count and summary.
	ToolFindOverdue = "find_overdue"

	// ToolFindDependencies returns tasks sharing tags with a given task.
	ToolFindDependencies = "find_dependencies"

	// ToolSuggestOrder proposes a 1-based execution order by urgency.
	ToolSuggestOrder = "suggest_order"

	// ToolCalculateUrgency is an alias of analyze_priorities.
	ToolCalculateUrgency = "calculate_urgency"
)

// TaskReader is the read-only task store surface the reasoning core
// consumes. The engine never queries storage directly; only tools and
// the context builder do, through this interface.
type TaskReader interface {
	// List returns tasks matching the filter, in a deterministic order.
	List(ctx context.Context, filter task.Filter) ([]*domain.Task, error)

	// Get retrieves a task by ID. Returns ErrTaskNotFound if absent.
	Get(ctx context.Context, taskID string) (*domain.Task, error)

	// Overdue returns non-terminal tasks due strictly before now.
	Overdue(ctx context.Context) ([]*domain.Task, error)
}

// OverdueReport is the payload returned by find_overdue.
type OverdueReport struct {
	// Tasks are the overdue tasks, in store order.
	Tasks []*domain.Task `json:"tasks"`

	// Count is the number of overdue tasks.
	Count int `json:"count"`

	// Summary is a one-line description of the findings.
	Summary string `json:"summary"`
}

// UrgencyScore computes the urgency score for a task at the given time:
// the priority weight (urgent=4, high=3, medium=2, low=1), plus 2 when
// the due date is strictly in the past, plus 1 when the due date is in
// the future but within 24 hours. The two bonuses are mutually
// exclusive by construction.
func UrgencyScore(t *domain.Task, now time.Time) int {
	score := t.Priority.Weight()
	if t.DueDate == nil {
		return score
	}
	switch {
	case t.DueDate.Before(now):
		score += constants.UrgencyOverdueBonus
	case t.DueDate.Sub(now) <= constants.DueSoonWindow:
		score += constants.UrgencyDueSoonBonus
	}
	return score
}

// RankByUrgency scores each task and sorts descending by score.
// The sort is stable: tasks with equal scores keep their input order,
// which for store-loaded tasks is creation order. This is the
// deterministic tie-break rule tests pin against.
func RankByUrgency(tasks []*domain.Task, now time.Time) []domain.RankedTask {
	ranked := make([]domain.RankedTask, 0, len(tasks))
	for _, t := range tasks {
		ranked = append(ranked, domain.RankedTask{Task: t, Score: UrgencyScore(t, now)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// builtinTool implements Tool with a named run function.
type builtinTool struct {
	name        string
	description string
	run         func(ctx context.Context, params domain.ToolParams) domain.ToolResult
}

// Name returns the registry name of the tool.
func (t *builtinTool) Name() string { return t.name }

// Description returns the one-line tool description.
func (t *builtinTool) Description() string { return t.description }

// Run executes the tool.
func (t *builtinTool) Run(ctx context.Context, params domain.ToolParams) domain.ToolResult {
	return t.run(ctx, params)
}

// Builtins returns the built-in tool set backed by the given store.
// calculate_urgency shares its implementation with analyze_priorities;
// the two names are deliberate aliases.
func Builtins(store TaskReader, clk clock.Clock) []Tool {
	if clk == nil {
		clk = clock.RealClock{}
	}

	analyze := func(ctx context.Context, params domain.ToolParams) domain.ToolResult {
		return runAnalyzePriorities(ctx, store, clk, params)
	}

	return []Tool{
		&builtinTool{
			name:        ToolQueryTasks,
			description: "Query tasks with optional status and priority filters",
			run: func(ctx context.Context, params domain.ToolParams) domain.ToolResult {
				return runQueryTasks(ctx, store, params)
			},
		},
		&builtinTool{
			name:        ToolAnalyzePriorities,
			description: "Rank tasks by urgency score (priority weight plus due-date bonuses)",
			run:         analyze,
		},
		&builtinTool{
			name:        ToolFindOverdue,
			description: "Find tasks whose due date has passed",
			run: func(ctx context.Context, params domain.ToolParams) domain.ToolResult {
				return runFindOverdue(ctx, store)
			},
		},
		&builtinTool{
			name:        ToolFindDependencies,
			description: "Find tasks related to a given task through shared tags",
			run: func(ctx context.Context, params domain.ToolParams) domain.ToolResult {
				return runFindDependencies(ctx, store, params)
			},
		},
		&builtinTool{
			name:        ToolSuggestOrder,
			description: "Suggest an execution order for pending tasks by urgency",
			run: func(ctx context.Context, params domain.ToolParams) domain.ToolResult {
				return runSuggestOrder(ctx, store, clk, params)
			},
		},
		&builtinTool{
			name:        ToolCalculateUrgency,
			description: "Calculate urgency scores for tasks (alias of analyze_priorities)",
			run:         analyze,
		},
	}
}

// NewBuiltinRegistry creates a registry pre-populated with the
// built-in tools.
func NewBuiltinRegistry(store TaskReader, clk clock.Clock) (*Registry, error) {
	r := NewRegistry()
	for _, t := range Builtins(store, clk) {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// runQueryTasks returns tasks matching the optional status/priority
// filters, capped at params.Limit (default 100).
func runQueryTasks(ctx context.Context, store TaskReader, params domain.ToolParams) domain.ToolResult {
	limit := params.Limit
	if limit <= 0 {
		limit = constants.DefaultQueryLimit
	}
	if params.Status != nil && !params.Status.IsValid() {
		return failure(fmt.Sprintf("%s: %q", sageerrors.ErrInvalidStatus.Error(), *params.Status))
	}
	if params.Priority != nil && !params.Priority.IsValid() {
		return failure(fmt.Sprintf("%s: %q", sageerrors.ErrInvalidPriority.Error(), *params.Priority))
	}

	tasks, err := store.List(ctx, task.Filter{
		Status:   params.Status,
		Priority: params.Priority,
		Limit:    limit,
	})
	if err != nil {
		return failure(fmt.Sprintf("failed to query tasks: %v", err))
	}

	return domain.ToolResult{
		Success: true,
		Summary: fmt.Sprintf("Found %d task(s)", len(tasks)),
		Data:    tasks,
	}
}

// runAnalyzePriorities ranks the supplied tasks (or up to 100 loaded
// from the store) by urgency score.
func runAnalyzePriorities(ctx context.Context, store TaskReader, clk clock.Clock, params domain.ToolParams) domain.ToolResult {
	tasks := params.Tasks
	if tasks == nil {
		var err error
		tasks, err = store.List(ctx, task.Filter{Limit: constants.DefaultQueryLimit})
		if err != nil {
			return failure(fmt.Sprintf("failed to load tasks: %v", err))
		}
	}

	ranked := RankByUrgency(tasks, clk.Now())
	if len(ranked) == 0 {
		return domain.ToolResult{
			Success: true,
			Summary: "No tasks to analyze",
			Data:    ranked,
		}
	}

	top := ranked[0]
	return domain.ToolResult{
		Success: true,
		Summary: fmt.Sprintf("Top priority: %q (urgency score %d)", top.Task.Title, top.Score),
		Data:    ranked,
	}
}

// runFindOverdue delegates to the store's overdue query.
func runFindOverdue(ctx context.Context, store TaskReader) domain.ToolResult {
	overdue, err := store.Overdue(ctx)
	if err != nil {
		return failure(fmt.Sprintf("failed to find overdue tasks: %v", err))
	}

	summary := "No overdue tasks found"
	if len(overdue) > 0 {
		summary = fmt.Sprintf("Found %d overdue task(s)", len(overdue))
	}

	return domain.ToolResult{
		Success: true,
		Summary: summary,
		Data: OverdueReport{
			Tasks:   overdue,
			Count:   len(overdue),
			Summary: summary,
		},
	}
}

// runFindDependencies returns tasks sharing at least one tag with the
// task identified by params.TaskID, excluding the task itself.
func runFindDependencies(ctx context.Context, store TaskReader, params domain.ToolParams) domain.ToolResult {
	if params.TaskID == "" {
		return failure("task_id is required")
	}

	subject, err := store.Get(ctx, params.TaskID)
	if err != nil {
		return failure(fmt.Sprintf("failed to resolve task %q: %v", params.TaskID, err))
	}

	tasks, err := store.List(ctx, task.Filter{Limit: constants.DefaultQueryLimit})
	if err != nil {
		return failure(fmt.Sprintf("failed to load tasks: %v", err))
	}

	related := make([]domain.RelatedTask, 0)
	for _, t := range tasks {
		if t.ID == subject.ID {
			continue
		}
		shared := subject.SharedTags(t)
		if len(shared) == 0 {
			continue
		}
		related = append(related, domain.RelatedTask{Task: t, SharedTags: shared})
	}

	return domain.ToolResult{
		Success: true,
		Summary: fmt.Sprintf("Found %d task(s) related to %q", len(related), subject.Title),
		Data:    related,
	}
}

// runSuggestOrder proposes a 1-based execution order for the supplied
// tasks (or pending tasks loaded from the store), reusing the urgency
// ranking and citing each task's score as the reason for its slot.
func runSuggestOrder(ctx context.Context, store TaskReader, clk clock.Clock, params domain.ToolParams) domain.ToolResult {
	tasks := params.Tasks
	if tasks == nil {
		pending := constants.TaskStatusPending
		var err error
		tasks, err = store.List(ctx, task.Filter{
			Status: &pending,
			Limit:  constants.DefaultQueryLimit,
		})
		if err != nil {
			return failure(fmt.Sprintf("failed to load pending tasks: %v", err))
		}
	}

	ranked := RankByUrgency(tasks, clk.Now())
	ordered := make([]domain.OrderedTask, 0, len(ranked))
	for i, r := range ranked {
		ordered = append(ordered, domain.OrderedTask{
			Position: i + 1,
			Task:     r.Task,
			Reason:   fmt.Sprintf("urgency score %d", r.Score),
		})
	}

	summary := "No tasks to order"
	if len(ordered) > 0 {
		summary = fmt.Sprintf("Suggested order for %d task(s); start with %q", len(ordered), ordered[0].Task.Title)
	}

	return domain.ToolResult{
		Success: true,
		Summary: summary,
		Data:    ordered,
	}
}

// failure builds a failed ToolResult with the given message.
func failure(msg string) domain.ToolResult {
	return domain.ToolResult{Success: false, Error: msg}
}
