package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigator_Initial(t *testing.T) {
	nav := NewNavigator(3)
	assert.Equal(t, 0, nav.Active())
	assert.Empty(t, nav.Completed())
	assert.False(t, nav.Terminal())
}

func TestNavigator_AdvanceIsMonotonicThenNoop(t *testing.T) {
	const n = 5
	nav := NewNavigator(n)

	for i := 0; i < n-1; i++ {
		assert.True(t, nav.Advance())
		assert.Equal(t, i+1, nav.Active())
		assert.True(t, nav.IsCompleted(i), "advance must complete the index it leaves")
	}

	assert.True(t, nav.Terminal())
	for i := 0; i < 3; i++ {
		assert.False(t, nav.Advance())
		assert.Equal(t, n-1, nav.Active())
	}
	assert.Equal(t, []int{0, 1, 2, 3}, nav.Completed())
}

func TestNavigator_RetreatKeepsCompleted(t *testing.T) {
	nav := NewNavigator(3)
	nav.Advance()
	nav.Advance()

	assert.True(t, nav.Retreat())
	assert.Equal(t, 1, nav.Active())
	assert.True(t, nav.IsCompleted(1))

	assert.True(t, nav.Retreat())
	assert.False(t, nav.Retreat(), "retreat at index 0 is a no-op")
	assert.Equal(t, 0, nav.Active())
}

func TestNavigator_JumpRestriction(t *testing.T) {
	tests := []struct {
		name   string
		target int
		ok     bool
		active int
	}{
		{"completed", 0, true, 0},
		{"active", 2, true, 2},
		{"unreached", 3, false, 2},
		{"out of range", 9, false, 2},
		{"negative", -1, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := NewNavigator(5)
			nav.Advance()
			nav.Advance()

			assert.Equal(t, tt.ok, nav.JumpTo(tt.target))
			assert.Equal(t, tt.active, nav.Active())
		})
	}
}

func TestNavigator_JumpBackThenForwardToCompleted(t *testing.T) {
	nav := NewNavigator(4)
	nav.Advance()
	nav.Advance()
	nav.Advance()

	assert.True(t, nav.JumpTo(0))
	assert.True(t, nav.JumpTo(2), "completed indices stay reachable")
	assert.False(t, nav.JumpTo(3), "3 was active, never completed")
}

func TestNavigator_Empty(t *testing.T) {
	nav := NewNavigator(0)
	assert.Equal(t, -1, nav.Active())
	assert.False(t, nav.Terminal())
	assert.False(t, nav.Advance())
	assert.False(t, nav.Retreat())
	assert.False(t, nav.JumpTo(-1))
	assert.False(t, nav.JumpTo(0))
}

func TestNavigator_SingleQuestionIsTerminal(t *testing.T) {
	nav := NewNavigator(1)
	assert.True(t, nav.Terminal())
	assert.False(t, nav.Advance())
}

func TestNavigator_Reset(t *testing.T) {
	nav := NewNavigator(3)
	nav.Advance()
	nav.Reset()
	assert.Equal(t, 0, nav.Active())
	assert.Empty(t, nav.Completed())
}
