package steplog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-cli/sage/internal/clock"
	"github.com/sage-cli/sage/internal/constants"
	sageerrors "github.com/sage-cli/sage/internal/errors"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	clk := clock.NewMock(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))
	store, err := NewFileStore(dir, clk)
	require.NoError(t, err)
	return store, dir
}

func TestFileStore_SaveStep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("persists a step with generated id and timestamp", func(t *testing.T) {
		store, dir := newTestStore(t)

		step, err := store.SaveStep(ctx, "ses-test0001", 1, constants.PhaseObserve, "goal", "observation", 12)
		require.NoError(t, err)
		assert.Regexp(t, `^stp-[0-9a-f]{8}$`, step.ID)
		assert.Equal(t, "ses-test0001", step.SessionID)
		assert.Equal(t, 1, step.StepNumber)
		assert.Equal(t, constants.PhaseObserve, step.Phase)
		assert.Equal(t, int64(12), step.DurationMs)
		assert.False(t, step.CreatedAt.IsZero())

		logPath := filepath.Join(dir, constants.SessionsDir, "ses-test0001", constants.StepLogFileName)
		_, statErr := os.Stat(logPath)
		assert.NoError(t, statErr)
	})

	t.Run("rejects empty session id", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.SaveStep(ctx, "", 1, constants.PhaseObserve, "", "", 0)
		require.ErrorIs(t, err, sageerrors.ErrEmptyValue)
	})

	t.Run("rejects step number below one", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.SaveStep(ctx, "ses-test0001", 0, constants.PhaseObserve, "", "", 0)
		require.ErrorIs(t, err, sageerrors.ErrValueOutOfRange)
	})

	t.Run("clamps negative duration to zero", func(t *testing.T) {
		store, _ := newTestStore(t)
		step, err := store.SaveStep(ctx, "ses-test0001", 1, constants.PhaseThink, "", "", -5)
		require.NoError(t, err)
		assert.Equal(t, int64(0), step.DurationMs)
	})
}

func TestFileStore_GetSteps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns steps ordered by step number", func(t *testing.T) {
		store, _ := newTestStore(t)
		phases := []constants.Phase{
			constants.PhaseObserve,
			constants.PhaseThink,
			constants.PhasePlan,
			constants.PhaseAct,
			constants.PhaseReflect,
		}
		for i, phase := range phases {
			_, err := store.SaveStep(ctx, "ses-order001", i+1, phase, "in", "out", 1)
			require.NoError(t, err)
		}

		steps, err := store.GetSteps(ctx, "ses-order001")
		require.NoError(t, err)
		require.Len(t, steps, 5)
		for i, step := range steps {
			assert.Equal(t, i+1, step.StepNumber)
			assert.Equal(t, phases[i], step.Phase)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.GetSteps(ctx, "ses-missing1")
		require.ErrorIs(t, err, sageerrors.ErrSessionNotFound)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.SaveStep(ctx, "ses-aaaa0001", 1, constants.PhaseObserve, "", "a", 0)
		require.NoError(t, err)
		_, err = store.SaveStep(ctx, "ses-bbbb0001", 1, constants.PhaseObserve, "", "b", 0)
		require.NoError(t, err)

		steps, err := store.GetSteps(ctx, "ses-aaaa0001")
		require.NoError(t, err)
		require.Len(t, steps, 1)
		assert.Equal(t, "a", steps[0].Output)
	})

	t.Run("skips corrupted lines", func(t *testing.T) {
		store, dir := newTestStore(t)
		_, err := store.SaveStep(ctx, "ses-cccc0001", 1, constants.PhaseObserve, "", "kept", 0)
		require.NoError(t, err)

		logPath := filepath.Join(dir, constants.SessionsDir, "ses-cccc0001", constants.StepLogFileName)
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o600)
		require.NoError(t, err)
		_, err = f.WriteString("{not json\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		steps, err := store.GetSteps(ctx, "ses-cccc0001")
		require.NoError(t, err)
		require.Len(t, steps, 1)
		assert.Equal(t, "kept", steps[0].Output)
	})
}
