package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sage-cli/sage/internal/constants"
	sageerrors "github.com/sage-cli/sage/internal/errors"
)

func TestGoal(t *testing.T) {
	t.Parallel()

	t.Run("valid goal", func(t *testing.T) {
		require.NoError(t, Goal("what should I work on next?"))
	})

	t.Run("empty goal", func(t *testing.T) {
		require.ErrorIs(t, Goal(""), sageerrors.ErrGoalRequired)
	})

	t.Run("whitespace-only goal", func(t *testing.T) {
		require.ErrorIs(t, Goal("   \t\n"), sageerrors.ErrGoalRequired)
	})

	t.Run("goal at limit", func(t *testing.T) {
		require.NoError(t, Goal(strings.Repeat("g", constants.MaxGoalLength)))
	})

	t.Run("goal too long", func(t *testing.T) {
		require.ErrorIs(t, Goal(strings.Repeat("g", constants.MaxGoalLength+1)), sageerrors.ErrGoalTooLong)
	})
}
