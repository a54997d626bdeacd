package agent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-cli/sage/internal/clock"
	"github.com/sage-cli/sage/internal/constants"
	"github.com/sage-cli/sage/internal/domain"
	sageerrors "github.com/sage-cli/sage/internal/errors"
	"github.com/sage-cli/sage/internal/reasoning"
	"github.com/sage-cli/sage/internal/steplog"
	"github.com/sage-cli/sage/internal/task"
)

var agentTestNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

// newTestRegistry builds a registry with both agents over file stores
// in a temp directory.
func newTestRegistry(t *testing.T) (*Registry, *task.FileStore) {
	t.Helper()
	home := t.TempDir()
	clk := clock.NewMock(agentTestNow)

	store, err := task.NewFileStore(home, clk)
	require.NoError(t, err)
	steps, err := steplog.NewFileStore(home, clk)
	require.NoError(t, err)
	tools, err := reasoning.NewBuiltinRegistry(store, clk)
	require.NoError(t, err)
	engine := reasoning.NewEngine(store, steps, tools, zerolog.Nop(), reasoning.WithClock(clk))

	registry := NewRegistry()
	require.NoError(t, registry.Register(NewReasoner(engine)))
	require.NoError(t, registry.Register(NewTasks(store)))
	return registry, store
}

func newAgentTask(seq int) *domain.Task {
	return &domain.Task{
		ID:        fmt.Sprintf("task-20260824-1200%02d", seq),
		Title:     "Agent task",
		Status:    constants.TaskStatusPending,
		Priority:  constants.PriorityMedium,
		CreatedAt: agentTestNow,
		UpdatedAt: agentTestNow,
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("duplicate name", func(t *testing.T) {
		registry, store := newTestRegistry(t)
		err := registry.Register(NewTasks(store))
		require.ErrorIs(t, err, sageerrors.ErrAgentExists)
	})

	t.Run("nil agent", func(t *testing.T) {
		registry := NewRegistry()
		require.ErrorIs(t, registry.Register(nil), sageerrors.ErrEmptyValue)
	})
}

func TestRegistry_Names(t *testing.T) {
	t.Parallel()
	registry, _ := newTestRegistry(t)
	assert.Equal(t, []domain.AgentKind{domain.AgentReasoner, domain.AgentTasks}, registry.Names())
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()
	registry, _ := newTestRegistry(t)

	a, ok := registry.Get(domain.AgentTasks)
	require.True(t, ok)
	assert.Equal(t, domain.AgentTasks, a.Name())

	_, ok = registry.Get(domain.AgentKind("scheduler"))
	assert.False(t, ok)
}

func TestRegistry_Dispatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown agent enumerates registered names", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		_, err := registry.Dispatch(ctx, domain.AgentKind("scheduler"), ActionReason, Request{})
		require.ErrorIs(t, err, sageerrors.ErrUnknownAgent)
		assert.Contains(t, err.Error(), "reasoner")
		assert.Contains(t, err.Error(), "tasks")
	})

	t.Run("unknown action enumerates valid actions", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		_, err := registry.Dispatch(ctx, domain.AgentTasks, ActionReason, Request{})
		require.ErrorIs(t, err, sageerrors.ErrUnknownAction)
		assert.Contains(t, err.Error(), "create_task")
		assert.Contains(t, err.Error(), "get_overdue")
	})
}

func TestReasoner_Handle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reason", func(t *testing.T) {
		registry, store := newTestRegistry(t)
		require.NoError(t, store.Create(ctx, newAgentTask(1)))

		resp, err := registry.Dispatch(ctx, domain.AgentReasoner, ActionReason, Request{
			Goal:         "what should I work on next?",
			IncludeSteps: true,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Reasoning)
		assert.NotEmpty(t, resp.Reasoning.SessionID)
		assert.Len(t, resp.Reasoning.Steps, 5)
		assert.Greater(t, resp.Reasoning.Confidence, 0.0)
	})

	t.Run("reason propagates validation errors", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		_, err := registry.Dispatch(ctx, domain.AgentReasoner, ActionReason, Request{Goal: ""})
		require.ErrorIs(t, err, sageerrors.ErrGoalRequired)
	})

	t.Run("get_tools", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		resp, err := registry.Dispatch(ctx, domain.AgentReasoner, ActionGetTools, Request{})
		require.NoError(t, err)
		require.Len(t, resp.Tools, 6)
		assert.Equal(t, "query_tasks", resp.Tools[0].Name)
		assert.NotEmpty(t, resp.Tools[0].Description)
	})

	t.Run("unknown action", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		_, err := registry.Dispatch(ctx, domain.AgentReasoner, ActionCreateTask, Request{})
		require.ErrorIs(t, err, sageerrors.ErrUnknownAction)
	})
}

func TestTasks_Handle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		created := newAgentTask(1)

		resp, err := registry.Dispatch(ctx, domain.AgentTasks, ActionCreateTask, Request{Task: created})
		require.NoError(t, err)
		require.NotNil(t, resp.Task)

		resp, err = registry.Dispatch(ctx, domain.AgentTasks, ActionGetTask, Request{TaskID: created.ID})
		require.NoError(t, err)
		require.NotNil(t, resp.Task)
		assert.Equal(t, created.Title, resp.Task.Title)
	})

	t.Run("update", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		created := newAgentTask(1)
		_, err := registry.Dispatch(ctx, domain.AgentTasks, ActionCreateTask, Request{Task: created})
		require.NoError(t, err)

		updated := *created
		updated.Status = constants.TaskStatusInProgress
		_, err = registry.Dispatch(ctx, domain.AgentTasks, ActionUpdateTask, Request{Task: &updated})
		require.NoError(t, err)

		resp, err := registry.Dispatch(ctx, domain.AgentTasks, ActionGetTask, Request{TaskID: created.ID})
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusInProgress, resp.Task.Status)
	})

	t.Run("delete", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		created := newAgentTask(1)
		_, err := registry.Dispatch(ctx, domain.AgentTasks, ActionCreateTask, Request{Task: created})
		require.NoError(t, err)

		_, err = registry.Dispatch(ctx, domain.AgentTasks, ActionDeleteTask, Request{TaskID: created.ID})
		require.NoError(t, err)

		_, err = registry.Dispatch(ctx, domain.AgentTasks, ActionGetTask, Request{TaskID: created.ID})
		require.ErrorIs(t, err, sageerrors.ErrTaskNotFound)
	})

	t.Run("list with filters", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		first := newAgentTask(1)
		second := newAgentTask(2)
		second.Priority = constants.PriorityUrgent
		for _, tsk := range []*domain.Task{first, second} {
			_, err := registry.Dispatch(ctx, domain.AgentTasks, ActionCreateTask, Request{Task: tsk})
			require.NoError(t, err)
		}

		resp, err := registry.Dispatch(ctx, domain.AgentTasks, ActionListTasks, Request{})
		require.NoError(t, err)
		assert.Len(t, resp.Tasks, 2)

		urgent := constants.PriorityUrgent
		resp, err = registry.Dispatch(ctx, domain.AgentTasks, ActionListTasks, Request{Priority: &urgent})
		require.NoError(t, err)
		require.Len(t, resp.Tasks, 1)
		assert.Equal(t, second.ID, resp.Tasks[0].ID)
	})

	t.Run("get_overdue", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		overdue := newAgentTask(1)
		past := agentTestNow.Add(-time.Hour)
		overdue.DueDate = &past
		current := newAgentTask(2)

		for _, tsk := range []*domain.Task{overdue, current} {
			_, err := registry.Dispatch(ctx, domain.AgentTasks, ActionCreateTask, Request{Task: tsk})
			require.NoError(t, err)
		}

		resp, err := registry.Dispatch(ctx, domain.AgentTasks, ActionGetOverdue, Request{})
		require.NoError(t, err)
		require.Len(t, resp.Tasks, 1)
		assert.Equal(t, overdue.ID, resp.Tasks[0].ID)
	})
}
