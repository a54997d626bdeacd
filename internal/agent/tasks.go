package agent

import (
	"context"

	"github.com/sage-cli/sage/internal/domain"
	"github.com/sage-cli/sage/internal/task"
)

// Tasks exposes task CRUD through the agent routing layer.
type Tasks struct {
	store task.Store
}

// NewTasks creates a Tasks agent backed by the given store.
func NewTasks(store task.Store) *Tasks {
	return &Tasks{store: store}
}

// Name returns the agent's registry name.
func (t *Tasks) Name() domain.AgentKind {
	return domain.AgentTasks
}

// Actions returns the actions the agent handles.
func (t *Tasks) Actions() []Action {
	return []Action{
		ActionCreateTask,
		ActionGetTask,
		ActionUpdateTask,
		ActionDeleteTask,
		ActionListTasks,
		ActionGetOverdue,
	}
}

// Handle executes one task action.
func (t *Tasks) Handle(ctx context.Context, action Action, req Request) (*Response, error) {
	switch action {
	case ActionCreateTask:
		if err := t.store.Create(ctx, req.Task); err != nil {
			return nil, err
		}
		return &Response{Task: req.Task}, nil

	case ActionGetTask:
		found, err := t.store.Get(ctx, req.TaskID)
		if err != nil {
			return nil, err
		}
		return &Response{Task: found}, nil

	case ActionUpdateTask:
		if err := t.store.Update(ctx, req.Task); err != nil {
			return nil, err
		}
		return &Response{Task: req.Task}, nil

	case ActionDeleteTask:
		if err := t.store.Delete(ctx, req.TaskID); err != nil {
			return nil, err
		}
		return &Response{}, nil

	case ActionListTasks:
		tasks, err := t.store.List(ctx, task.Filter{
			Status:   req.Status,
			Priority: req.Priority,
			Limit:    req.Limit,
		})
		if err != nil {
			return nil, err
		}
		return &Response{Tasks: tasks}, nil

	case ActionGetOverdue:
		tasks, err := t.store.Overdue(ctx)
		if err != nil {
			return nil, err
		}
		return &Response{Tasks: tasks}, nil

	default:
		return nil, unknownAction(t.Name(), action, t.Actions())
	}
}

// Ensure Tasks implements Agent.
var _ Agent = (*Tasks)(nil)
