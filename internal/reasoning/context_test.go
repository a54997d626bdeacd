package reasoning

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-cli/sage/internal/clock"
	"github.com/sage-cli/sage/internal/constants"
	"github.com/sage-cli/sage/internal/domain"
	"github.com/sage-cli/sage/internal/testutil"
)

// memStepLog is an in-memory steplog.Store for reasoning tests.
type memStepLog struct {
	mu      sync.Mutex
	steps   map[string][]domain.ReasoningStep
	saveErr error
	clk     clock.Clock
}

func newMemStepLog(clk clock.Clock) *memStepLog {
	return &memStepLog{
		steps: make(map[string][]domain.ReasoningStep),
		clk:   clk,
	}
}

func (s *memStepLog) SaveStep(_ context.Context, sessionID string, stepNumber int, phase constants.Phase, input, output string, durationMs int64) (domain.ReasoningStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return domain.ReasoningStep{}, s.saveErr
	}
	step := domain.ReasoningStep{
		ID:         "stp-" + uuid.New().String()[:8],
		SessionID:  sessionID,
		StepNumber: stepNumber,
		Phase:      phase,
		Input:      input,
		Output:     output,
		DurationMs: durationMs,
		CreatedAt:  s.clk.Now().UTC(),
	}
	s.steps[sessionID] = append(s.steps[sessionID], step)
	return step, nil
}

func (s *memStepLog) GetSteps(_ context.Context, sessionID string) ([]domain.ReasoningStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ReasoningStep(nil), s.steps[sessionID]...), nil
}

// totalSaved counts steps persisted across all sessions.
func (s *memStepLog) totalSaved() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, steps := range s.steps {
		n += len(steps)
	}
	return n
}

func TestMemory_Initialize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewMock(testNow)

	store := &memStore{now: testNow, tasks: []*domain.Task{
		makeTask(1, constants.PriorityMedium, nil),
		makeTask(2, constants.PriorityUrgent, timePtr(testNow.Add(-time.Hour))),
	}}
	mem := NewMemory(store, newMemStepLog(clk), clk)

	snap, err := mem.Initialize(ctx, "review my tasks")
	require.NoError(t, err)

	assert.Regexp(t, `^ses-[0-9a-f]{8}$`, snap.SessionID)
	assert.Equal(t, snap.SessionID, mem.SessionID())
	assert.Equal(t, "review my tasks", snap.Goal)
	assert.Len(t, snap.Tasks, 2)
	assert.Len(t, snap.OverdueTasks, 1)
	assert.Equal(t, 2, snap.Stats.Total)
	assert.Equal(t, 1, snap.Stats.OverdueCount)
	assert.Equal(t, 2, snap.Stats.ByStatus[constants.TaskStatusPending])
	assert.Equal(t, 1, snap.Stats.ByPriority[constants.PriorityUrgent])
	assert.Empty(t, snap.PreviousSteps)
}

func TestMemory_Refresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewMock(testNow)

	store := &memStore{now: testNow, tasks: []*domain.Task{
		makeTask(1, constants.PriorityMedium, nil),
	}}
	mem := NewMemory(store, newMemStepLog(clk), clk)

	snap, err := mem.Initialize(ctx, "goal")
	require.NoError(t, err)
	sessionID := snap.SessionID

	// Store changes between iterations must be visible after refresh.
	store.tasks = append(store.tasks, makeTask(2, constants.PriorityHigh, nil))
	_, err = mem.AddStep(ctx, 1, constants.PhaseObserve, "in", "out", 0)
	require.NoError(t, err)

	refreshed, err := mem.Refresh(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, sessionID, refreshed.SessionID)
	assert.Equal(t, "goal", refreshed.Goal)
	assert.Len(t, refreshed.Tasks, 2)
	require.Len(t, refreshed.PreviousSteps, 1)
	assert.Equal(t, constants.PhaseObserve, refreshed.PreviousSteps[0].Phase)
}

func TestMemory_AddStep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewMock(testNow)

	t.Run("persists and accumulates history", func(t *testing.T) {
		steps := newMemStepLog(clk)
		mem := NewMemory(&memStore{now: testNow}, steps, clk)
		_, err := mem.Initialize(ctx, "goal")
		require.NoError(t, err)

		step, err := mem.AddStep(ctx, 1, constants.PhaseObserve, "in", "out", 5*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, int64(5), step.DurationMs)
		assert.Equal(t, 1, mem.StepCount())
		assert.Equal(t, 1, steps.totalSaved())
	})

	t.Run("keeps the step in memory when persistence fails", func(t *testing.T) {
		steps := newMemStepLog(clk)
		steps.saveErr = testutil.ErrMockDiskFull
		mem := NewMemory(&memStore{now: testNow}, steps, clk)
		_, err := mem.Initialize(ctx, "goal")
		require.NoError(t, err)

		step, err := mem.AddStep(ctx, 1, constants.PhaseThink, "in", "out", 0)
		require.Error(t, err)
		assert.Equal(t, 1, mem.StepCount())
		assert.NotEmpty(t, step.ID)
		assert.Equal(t, constants.PhaseThink, step.Phase)
	})
}

func TestMemory_Steps_DefensiveCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewMock(testNow)

	mem := NewMemory(&memStore{now: testNow}, newMemStepLog(clk), clk)
	_, err := mem.Initialize(ctx, "goal")
	require.NoError(t, err)
	_, err = mem.AddStep(ctx, 1, constants.PhaseObserve, "in", "out", 0)
	require.NoError(t, err)

	steps := mem.Steps()
	steps[0].Output = "mutated"
	assert.Equal(t, "out", mem.Steps()[0].Output)
}

func TestMemory_SessionIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewMock(testNow)

	store := &memStore{now: testNow}
	steps := newMemStepLog(clk)

	// Two memories over the same collaborators never share history.
	memA := NewMemory(store, steps, clk)
	memB := NewMemory(store, steps, clk)

	snapA, err := memA.Initialize(ctx, "goal a")
	require.NoError(t, err)
	snapB, err := memB.Initialize(ctx, "goal b")
	require.NoError(t, err)
	assert.NotEqual(t, snapA.SessionID, snapB.SessionID)

	_, err = memA.AddStep(ctx, 1, constants.PhaseObserve, "", "a", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, memA.StepCount())
	assert.Equal(t, 0, memB.StepCount())
}

func TestMemory_Reset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewMock(testNow)

	mem := NewMemory(&memStore{now: testNow}, newMemStepLog(clk), clk)
	_, err := mem.Initialize(ctx, "goal")
	require.NoError(t, err)
	_, err = mem.AddStep(ctx, 1, constants.PhaseObserve, "", "", 0)
	require.NoError(t, err)

	mem.Reset()
	assert.Empty(t, mem.SessionID())
	assert.Equal(t, 0, mem.StepCount())
}
