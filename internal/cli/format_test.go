package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sageerrors "github.com/sage-cli/sage/internal/errors"
)

func TestOutputError(t *testing.T) {
	t.Parallel()

	t.Run("text mode returns the error unchanged", func(t *testing.T) {
		var buf bytes.Buffer
		original := errors.New("boom")
		err := outputError(&buf, OutputText, "task add", original)
		assert.Equal(t, original, err)
		assert.Empty(t, buf.String())
	})

	t.Run("json mode encodes and signals via sentinel", func(t *testing.T) {
		var buf bytes.Buffer
		err := outputError(&buf, OutputJSON, "task add", errors.New("boom"))
		require.ErrorIs(t, err, sageerrors.ErrJSONErrorOutput)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
		assert.Equal(t, false, payload["success"])
		assert.Equal(t, "task add", payload["command"])
		assert.Equal(t, "boom", payload["error"])
	})
}

func TestOutputFormat(t *testing.T) {
	t.Parallel()
	assert.Equal(t, OutputText, outputFormat(nil))
	assert.Equal(t, OutputText, outputFormat(&GlobalFlags{}))
	assert.Equal(t, OutputJSON, outputFormat(&GlobalFlags{Output: OutputJSON}))
}

func TestParseTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "backend", []string{"backend"}},
		{"multiple with whitespace", " backend , auth ,frontend", []string{"backend", "auth", "frontend"}},
		{"drops empty entries", "backend,,auth,", []string{"backend", "auth"}},
		{"only separators", ", ,", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseTags(tc.raw))
		})
	}
}

func TestParseDueDate(t *testing.T) {
	t.Parallel()

	t.Run("empty is nil", func(t *testing.T) {
		due, err := parseDueDate("")
		require.NoError(t, err)
		assert.Nil(t, due)
	})

	t.Run("rfc3339", func(t *testing.T) {
		due, err := parseDueDate("2026-08-24T15:00:00Z")
		require.NoError(t, err)
		require.NotNil(t, due)
		assert.Equal(t, time.Date(2026, 8, 24, 15, 0, 0, 0, time.UTC), due.UTC())
	})

	t.Run("date only", func(t *testing.T) {
		due, err := parseDueDate("2026-08-24")
		require.NoError(t, err)
		require.NotNil(t, due)
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), due.UTC())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := parseDueDate("24/08/2026")
		require.ErrorIs(t, err, sageerrors.ErrInvalidArgument)
	})
}

func TestFormatDue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "-", formatDue(nil))
	due := time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-24 15:30", formatDue(&due))
}

func TestFormatAge(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"just now", now.Add(-10 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m"},
		{"hours", now.Add(-3 * time.Hour), "3h"},
		{"days", now.Add(-2 * 24 * time.Hour), "2d"},
		{"weeks", now.Add(-15 * 24 * time.Hour), "2w"},
		{"months", now.Add(-60 * 24 * time.Hour), "2mo"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatAge(tc.at))
		})
	}
}
