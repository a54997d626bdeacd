package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	t.Parallel()
	before := time.Now()
	got := RealClock{}.Now()
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestMock(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	t.Run("fixed at construction time", func(t *testing.T) {
		clk := NewMock(base)
		assert.Equal(t, base, clk.Now())
		assert.Equal(t, base, clk.Now())
	})

	t.Run("advance moves time forward", func(t *testing.T) {
		clk := NewMock(base)
		clk.Advance(90 * time.Minute)
		assert.Equal(t, base.Add(90*time.Minute), clk.Now())
	})

	t.Run("set replaces time", func(t *testing.T) {
		clk := NewMock(base)
		later := base.AddDate(0, 1, 0)
		clk.Set(later)
		assert.Equal(t, later, clk.Now())
	})
}
