package engine

import "sort"

// Navigator tracks the active question and the set of completed ones for
// a sequence of n questions.
//
// Each index is either not yet reached, active, or completed. The active
// index is never required to be in the completed set. An empty sequence
// has no active index and never changes state.
//
// Navigator performs no validation; callers gate Advance themselves.
type Navigator struct {
	n         int
	active    int
	completed map[int]bool
}

// NewNavigator creates a navigator at index 0 with nothing completed.
func NewNavigator(n int) *Navigator {
	nav := &Navigator{n: n, completed: make(map[int]bool)}
	if n == 0 {
		nav.active = -1
	}
	return nav
}

// Len returns the sequence length.
func (n *Navigator) Len() int {
	return n.n
}

// Active returns the active index, or -1 for an empty sequence.
func (n *Navigator) Active() int {
	return n.active
}

// Terminal reports whether the active index is the last one.
func (n *Navigator) Terminal() bool {
	return n.n > 0 && n.active == n.n-1
}

// IsCompleted reports whether index i has been completed.
func (n *Navigator) IsCompleted(i int) bool {
	return n.completed[i]
}

// Completed returns the completed indices in ascending order.
func (n *Navigator) Completed() []int {
	out := make([]int, 0, len(n.completed))
	for i := range n.completed {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Advance moves to the next index and marks the index it left completed.
// At the last index it does nothing. It reports whether the active index
// changed.
func (n *Navigator) Advance() bool {
	if n.n == 0 || n.Terminal() {
		return false
	}
	n.completed[n.active] = true
	n.active++
	return true
}

// Retreat moves to the previous index. The target keeps its completed mark.
func (n *Navigator) Retreat() bool {
	if n.active <= 0 {
		return false
	}
	n.active--
	return true
}

// JumpTo activates index i if it is completed or already active.
// Any other target, including one out of range, is ignored.
func (n *Navigator) JumpTo(i int) bool {
	if i == n.active {
		return n.n > 0
	}
	if !n.completed[i] {
		return false
	}
	n.active = i
	return true
}

// Reset returns to index 0 and clears the completed set.
func (n *Navigator) Reset() {
	n.completed = make(map[int]bool)
	if n.n == 0 {
		n.active = -1
		return
	}
	n.active = 0
}
