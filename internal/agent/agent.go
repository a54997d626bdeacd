// Package agent provides the multi-agent routing layer for SAGE.
// Agents are named endpoints that map a fixed set of actions to typed
// handlers. Routing is explicit: unknown agents and unknown actions
// fail with errors that enumerate the valid set, so callers can
// discover what is supported.
//
// Import rules:
//   - CAN import: internal/domain, internal/errors, internal/task,
//     internal/reasoning, internal/constants
//   - MUST NOT import: internal/cli
package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sage-cli/sage/internal/constants"
	"github.com/sage-cli/sage/internal/domain"
	sageerrors "github.com/sage-cli/sage/internal/errors"
)

// Action identifies one operation an agent can handle.
type Action string

// Action constants define the supported operations across agents.
const (
	// ActionReason runs a reasoning session for a goal.
	ActionReason Action = "reason"

	// ActionGetTools lists the reasoning tools.
	ActionGetTools Action = "get_tools"

	// ActionCreateTask creates a task.
	ActionCreateTask Action = "create_task"

	// ActionGetTask retrieves a task by ID.
	ActionGetTask Action = "get_task"

	// ActionUpdateTask updates a task.
	ActionUpdateTask Action = "update_task"

	// ActionDeleteTask deletes a task by ID.
	ActionDeleteTask Action = "delete_task"

	// ActionListTasks lists tasks with optional filters.
	ActionListTasks Action = "list_tasks"

	// ActionGetOverdue lists overdue tasks.
	ActionGetOverdue Action = "get_overdue"
)

// String returns the string representation of the Action.
func (a Action) String() string {
	return string(a)
}

// Request is the typed payload for a dispatched action. Each action
// reads only the fields it documents.
type Request struct {
	// Goal is the reasoning goal (reason).
	Goal string

	// MaxIterations overrides the iteration budget (reason).
	MaxIterations int

	// Timeout overrides the wall-clock budget (reason).
	Timeout time.Duration

	// IncludeSteps requests step history in the result (reason).
	IncludeSteps bool

	// Task is the task payload (create_task, update_task).
	Task *domain.Task

	// TaskID identifies the subject task (get_task, delete_task).
	TaskID string

	// Status filters listed tasks (list_tasks).
	Status *constants.TaskStatus

	// Priority filters listed tasks (list_tasks).
	Priority *constants.Priority

	// Limit caps listed tasks (list_tasks). Zero means no limit.
	Limit int
}

// Response is the typed result of a dispatched action. Exactly one of
// the payload fields is populated, matching the action.
type Response struct {
	// Reasoning holds the result of a reason action.
	Reasoning *domain.ReasoningResult

	// Tools holds the get_tools listing.
	Tools []ToolDescription

	// Task holds a single-task payload.
	Task *domain.Task

	// Tasks holds a multi-task payload.
	Tasks []*domain.Task
}

// ToolDescription describes one reasoning tool for introspection.
type ToolDescription struct {
	// Name is the registry name of the tool.
	Name string `json:"name"`

	// Description is a one-line description of what the tool does.
	Description string `json:"description"`
}

// Agent is a named routing endpoint handling a fixed action set.
type Agent interface {
	// Name returns the agent's registry name.
	Name() domain.AgentKind

	// Actions returns the actions the agent handles, in a stable order.
	Actions() []Action

	// Handle executes one action. Unsupported actions return
	// ErrUnknownAction wrapped with the valid action list.
	Handle(ctx context.Context, action Action, req Request) (*Response, error)
}

// Registry maps agent names to agents. It is safe for concurrent read
// access after initialization.
type Registry struct {
	mu     sync.RWMutex
	agents map[domain.AgentKind]Agent
	order  []domain.AgentKind
}

// NewRegistry creates a new empty agent registry.
func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[domain.AgentKind]Agent),
	}
}

// Register adds an agent to the registry.
// Returns ErrAgentExists if the name is already taken.
func (r *Registry) Register(a Agent) error {
	if a == nil {
		return fmt.Errorf("failed to register agent: agent %w", sageerrors.ErrEmptyValue)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Name()
	if _, ok := r.agents[name]; ok {
		return fmt.Errorf("%w: %s", sageerrors.ErrAgentExists, name)
	}
	r.agents[name] = a
	r.order = append(r.order, name)
	return nil
}

// Dispatch routes an action to the named agent.
// Unknown agents and unknown actions fail with errors enumerating the
// valid names so callers can self-correct.
func (r *Registry) Dispatch(ctx context.Context, name domain.AgentKind, action Action, req Request) (*Response, error) {
	r.mu.RLock()
	a, ok := r.agents[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q; registered agents: %s",
			sageerrors.ErrUnknownAgent, name, joinAgentNames(r.Names()))
	}
	return a.Handle(ctx, action, req)
}

// Get returns the agent registered under the given name.
func (r *Registry) Get(name domain.AgentKind) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	return a, ok
}

// Names returns the registered agent names sorted alphabetically.
func (r *Registry) Names() []domain.AgentKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]domain.AgentKind, len(r.order))
	copy(names, r.order)
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// unknownAction builds the standard unknown-action error listing the
// agent's valid actions.
func unknownAction(agent domain.AgentKind, action Action, valid []Action) error {
	names := make([]string, 0, len(valid))
	for _, a := range valid {
		names = append(names, a.String())
	}
	return fmt.Errorf("%w: %q for agent %q; valid actions: %s",
		sageerrors.ErrUnknownAction, action, agent, strings.Join(names, ", "))
}

// joinAgentNames renders agent kinds as a comma-separated list.
func joinAgentNames(names []domain.AgentKind) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n.String())
	}
	return strings.Join(parts, ", ")
}
