package engine

import "sync/atomic"

// Clock stamps processed events with a strictly increasing sequence number.
//
// Traces are ordered by seq, never by wall-clock time, so a scripted run
// driven by a manual scheduler produces the same trace every time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// although only the session's processing goroutine calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Onboarding uses it to continue numbering across section runs.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
