package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sageerrors "github.com/sage-cli/sage/internal/errors"
)

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()
	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
	assert.False(t, IsValidOutputFormat("JSON"))
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"generic error", errors.New("boom"), ExitError},
		{"invalid output format", sageerrors.ErrInvalidOutputFormat, ExitInvalidInput},
		{"wrapped invalid output format", fmt.Errorf("check: %w", sageerrors.ErrInvalidOutputFormat), ExitInvalidInput},
		{"title required", sageerrors.ErrTitleRequired, ExitInvalidInput},
		{"title too long", sageerrors.ErrTitleTooLong, ExitInvalidInput},
		{"description too long", sageerrors.ErrDescriptionTooLong, ExitInvalidInput},
		{"goal required", sageerrors.ErrGoalRequired, ExitInvalidInput},
		{"goal too long", sageerrors.ErrGoalTooLong, ExitInvalidInput},
		{"invalid argument", sageerrors.ErrInvalidArgument, ExitInvalidInput},
		{"value out of range", sageerrors.ErrValueOutOfRange, ExitInvalidInput},
		{"task not found is a general error", sageerrors.ErrTaskNotFound, ExitError},
		{"json error output is a general error", sageerrors.ErrJSONErrorOutput, ExitError},
		{"cobra unknown flag", errors.New(`unknown flag: --bogus`), ExitInvalidInput},
		{"cobra unknown shorthand", errors.New(`unknown shorthand flag: 'x' in -x`), ExitInvalidInput},
		{"cobra mutually exclusive group", errors.New("if any flags in the group [verbose quiet] are set none of the others can be"), ExitInvalidInput},
		{"cobra unknown command", errors.New(`unknown command "frobnicate" for "sage"`), ExitInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}

func TestAddGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "sage"}
	flags := &GlobalFlags{}
	AddGlobalFlags(cmd, flags)

	require.NoError(t, cmd.ParseFlags([]string{"-o", "json", "-v"}))
	assert.Equal(t, OutputJSON, flags.Output)
	assert.True(t, flags.Verbose)
	assert.False(t, flags.Quiet)
}

func TestBindGlobalFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "sage"}
	flags := &GlobalFlags{}
	AddGlobalFlags(cmd, flags)

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))
	assert.Equal(t, OutputText, v.GetString("output"))

	t.Setenv("SAGE_OUTPUT", "json")
	assert.Equal(t, OutputJSON, v.GetString("output"))
}
