package reasoning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sage-cli/sage/internal/clock"
	"github.com/sage-cli/sage/internal/constants"
	"github.com/sage-cli/sage/internal/domain"
	"github.com/sage-cli/sage/internal/steplog"
	"github.com/sage-cli/sage/internal/task"
)

// Snapshot is a consistent view of task state for one loop iteration.
// Store-derived fields are recomputed on refresh; goal, session id, and
// step history carry across iterations.
type Snapshot struct {
	// Goal is the natural-language goal driving the session.
	Goal string

	// SessionID identifies the owning reasoning session.
	SessionID string

	// Tasks is every task loaded from the store at snapshot time.
	Tasks []*domain.Task

	// OverdueTasks is the subset of tasks that are overdue.
	OverdueTasks []*domain.Task

	// Stats summarizes the loaded tasks.
	Stats domain.ContextStats

	// PreviousSteps is the session history accumulated so far.
	PreviousSteps []domain.ReasoningStep
}

// Memory carries session-scoped reasoning state: the session id, the
// accumulated step history, and the collaborators needed to build
// snapshots and persist steps.
//
// Memory is call-local by design: the engine constructs a fresh Memory
// per Reason invocation so concurrent sessions can never share or
// corrupt each other's history.
type Memory struct {
	store TaskReader
	steps steplog.Store
	clk   clock.Clock

	sessionID string
	history   []domain.ReasoningStep
}

// NewMemory creates a Memory bound to the given collaborators.
func NewMemory(store TaskReader, steps steplog.Store, clk clock.Clock) *Memory {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Memory{
		store: store,
		steps: steps,
		clk:   clk,
	}
}

// SessionID returns the current session id, empty before Initialize.
func (m *Memory) SessionID() string {
	return m.sessionID
}

// Initialize starts a new session: generates a session id, clears step
// history, and builds the first snapshot from current store state.
func (m *Memory) Initialize(ctx context.Context, goal string) (*Snapshot, error) {
	m.sessionID = "ses-" + uuid.New().String()[:8]
	m.history = nil

	snap := &Snapshot{
		Goal:      goal,
		SessionID: m.sessionID,
	}
	if err := m.load(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to initialize context: %w", err)
	}
	return snap, nil
}

// Refresh recomputes the store-derived fields of the snapshot while
// preserving goal, session id, and accumulated step history. The store
// may have changed between iterations; each iteration must see fresh
// state.
func (m *Memory) Refresh(ctx context.Context, snap *Snapshot) (*Snapshot, error) {
	next := &Snapshot{
		Goal:      snap.Goal,
		SessionID: snap.SessionID,
	}
	if err := m.load(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to refresh context: %w", err)
	}
	return next, nil
}

// load fills the snapshot's tasks, overdue tasks, stats, and history.
func (m *Memory) load(ctx context.Context, snap *Snapshot) error {
	tasks, err := m.store.List(ctx, task.Filter{})
	if err != nil {
		return err
	}
	overdue, err := m.store.Overdue(ctx)
	if err != nil {
		return err
	}

	snap.Tasks = tasks
	snap.OverdueTasks = overdue
	snap.Stats = buildStats(tasks, len(overdue))
	snap.PreviousSteps = m.Steps()
	return nil
}

// AddStep records one phase execution: it persists the step through
// the step log, appends it to the in-memory session history, and
// returns the recorded step.
//
// Persistence failures do not lose the step: it is still recorded
// in-memory (with a locally generated id) and the error is returned so
// the caller can log it and proceed.
func (m *Memory) AddStep(ctx context.Context, stepNumber int, phase constants.Phase, input, output string, duration time.Duration) (domain.ReasoningStep, error) {
	durationMs := duration.Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}

	step, err := m.steps.SaveStep(ctx, m.sessionID, stepNumber, phase, input, output, durationMs)
	if err != nil {
		step = domain.ReasoningStep{
			ID:         "stp-" + uuid.New().String()[:8],
			SessionID:  m.sessionID,
			StepNumber: stepNumber,
			Phase:      phase,
			Input:      input,
			Output:     output,
			DurationMs: durationMs,
			CreatedAt:  m.clk.Now().UTC(),
		}
	}

	m.history = append(m.history, step)
	return step, err
}

// Steps returns a defensive copy of the accumulated session history.
// Callers cannot mutate session state through the returned slice.
func (m *Memory) Steps() []domain.ReasoningStep {
	steps := make([]domain.ReasoningStep, len(m.history))
	copy(steps, m.history)
	return steps
}

// StepCount returns the number of steps recorded so far.
func (m *Memory) StepCount() int {
	return len(m.history)
}

// Reset clears the session id and step history, returning the Memory
// to its pre-Initialize state.
func (m *Memory) Reset() {
	m.sessionID = ""
	m.history = nil
}

// buildStats computes snapshot statistics over the loaded tasks.
func buildStats(tasks []*domain.Task, overdueCount int) domain.ContextStats {
	stats := domain.ContextStats{
		Total:        len(tasks),
		ByStatus:     make(map[constants.TaskStatus]int),
		ByPriority:   make(map[constants.Priority]int),
		OverdueCount: overdueCount,
	}
	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
	}
	return stats
}
