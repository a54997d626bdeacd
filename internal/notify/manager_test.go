package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-cli/sage/internal/clock"
	sageerrors "github.com/sage-cli/sage/internal/errors"
)

func newTestManager(t *testing.T) (*Manager, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))
	mgr, err := NewManager(t.TempDir(), clk)
	require.NoError(t, err)
	return mgr, clk
}

func TestManager_Add(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a notification", func(t *testing.T) {
		mgr, _ := newTestManager(t)
		n, err := mgr.Add(ctx, LevelWarning, "Task due soon", "task-20260824-100000")
		require.NoError(t, err)
		assert.Regexp(t, `^ntf-[0-9a-f]{8}$`, n.ID)
		assert.Equal(t, LevelWarning, n.Level)
		assert.False(t, n.Read)

		got, err := mgr.Get(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, "Task due soon", got.Message)
		assert.Equal(t, "task-20260824-100000", got.TaskID)
	})

	t.Run("rejects empty message", func(t *testing.T) {
		mgr, _ := newTestManager(t)
		_, err := mgr.Add(ctx, LevelInfo, "", "")
		require.ErrorIs(t, err, sageerrors.ErrEmptyValue)
	})

	t.Run("rejects invalid level", func(t *testing.T) {
		mgr, _ := newTestManager(t)
		_, err := mgr.Add(ctx, Level("critical"), "msg", "")
		require.ErrorIs(t, err, sageerrors.ErrInvalidArgument)
	})
}

func TestManager_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty directory", func(t *testing.T) {
		mgr, _ := newTestManager(t)
		notifications, err := mgr.List(ctx, Filter{})
		require.NoError(t, err)
		assert.Empty(t, notifications)
	})

	t.Run("newest first", func(t *testing.T) {
		mgr, clk := newTestManager(t)
		first, err := mgr.Add(ctx, LevelInfo, "first", "")
		require.NoError(t, err)
		clk.Advance(time.Minute)
		second, err := mgr.Add(ctx, LevelInfo, "second", "")
		require.NoError(t, err)

		notifications, err := mgr.List(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, notifications, 2)
		assert.Equal(t, second.ID, notifications[0].ID)
		assert.Equal(t, first.ID, notifications[1].ID)
	})

	t.Run("filters by level, unread, and limit", func(t *testing.T) {
		mgr, clk := newTestManager(t)
		info, err := mgr.Add(ctx, LevelInfo, "info", "")
		require.NoError(t, err)
		clk.Advance(time.Minute)
		_, err = mgr.Add(ctx, LevelUrgent, "urgent one", "")
		require.NoError(t, err)
		clk.Advance(time.Minute)
		_, err = mgr.Add(ctx, LevelUrgent, "urgent two", "")
		require.NoError(t, err)

		urgent := LevelUrgent
		notifications, err := mgr.List(ctx, Filter{Level: &urgent})
		require.NoError(t, err)
		assert.Len(t, notifications, 2)

		notifications, err = mgr.List(ctx, Filter{Level: &urgent, Limit: 1})
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, "urgent two", notifications[0].Message)

		require.NoError(t, mgr.MarkRead(ctx, info.ID))
		notifications, err = mgr.List(ctx, Filter{Unread: true})
		require.NoError(t, err)
		assert.Len(t, notifications, 2)
	})
}

func TestManager_MarkRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("marks and is idempotent", func(t *testing.T) {
		mgr, _ := newTestManager(t)
		n, err := mgr.Add(ctx, LevelInfo, "msg", "")
		require.NoError(t, err)

		require.NoError(t, mgr.MarkRead(ctx, n.ID))
		require.NoError(t, mgr.MarkRead(ctx, n.ID))

		got, err := mgr.Get(ctx, n.ID)
		require.NoError(t, err)
		assert.True(t, got.Read)
	})

	t.Run("unknown id", func(t *testing.T) {
		mgr, _ := newTestManager(t)
		require.ErrorIs(t, mgr.MarkRead(ctx, "ntf-00000000"), sageerrors.ErrNotificationNotFound)
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		mgr, _ := newTestManager(t)
		err := mgr.MarkRead(ctx, "../escape")
		require.ErrorIs(t, err, sageerrors.ErrPathTraversal)
	})
}

func TestManager_Prune(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mgr, clk := newTestManager(t)

	oldRead, err := mgr.Add(ctx, LevelInfo, "old read", "")
	require.NoError(t, err)
	require.NoError(t, mgr.MarkRead(ctx, oldRead.ID))

	oldUnread, err := mgr.Add(ctx, LevelInfo, "old unread", "")
	require.NoError(t, err)

	clk.Advance(48 * time.Hour)

	recentRead, err := mgr.Add(ctx, LevelInfo, "recent read", "")
	require.NoError(t, err)
	require.NoError(t, mgr.MarkRead(ctx, recentRead.ID))

	removed, err := mgr.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// Only the old read notification is gone.
	_, err = mgr.Get(ctx, oldRead.ID)
	require.ErrorIs(t, err, sageerrors.ErrNotificationNotFound)
	_, err = mgr.Get(ctx, oldUnread.ID)
	require.NoError(t, err)
	_, err = mgr.Get(ctx, recentRead.ID)
	require.NoError(t, err)
}

func TestLevel_IsValid(t *testing.T) {
	t.Parallel()
	for _, level := range ValidLevels() {
		assert.True(t, level.IsValid(), "level %s", level)
	}
	assert.False(t, Level("critical").IsValid())
	assert.False(t, Level("").IsValid())
}
